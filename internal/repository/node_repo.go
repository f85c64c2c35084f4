package repository

import (
	"context"
	"strings"
	"time"

	"tradenet/internal/dto"
	"tradenet/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NodeAggregates is the raw aggregate row behind GET /v1/nodes/statistics.
type NodeAggregates struct {
	TotalNodes     int64
	TotalProducers int64
	TotalNetworks  int64
	TotalResellers int64
	TotalDebt      decimal.Decimal
	TotalLevel     int64
}

// NodeRepository is the storage boundary for nodes. Multi-step writes
// (supplier reassignment with level propagation, bulk debt clearing) take an
// explicit tx so the service layer can make them all-or-nothing.
type NodeRepository interface {
	Create(ctx context.Context, tx *gorm.DB, n *model.Node) error
	FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Node, error)
	FindDetail(ctx context.Context, id uuid.UUID) (*model.Node, error)
	FindClients(ctx context.Context, tx *gorm.DB, supplierIDs []uuid.UUID) ([]model.Node, error)
	CountClients(ctx context.Context, id uuid.UUID) (int64, error)
	Update(ctx context.Context, tx *gorm.DB, n *model.Node) error
	UpdateLevels(ctx context.Context, tx *gorm.DB, levels map[uuid.UUID]int) error
	ClearDebt(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter dto.NodeFilter) ([]model.Node, int64, error)
	Aggregate(ctx context.Context) (*NodeAggregates, error)
	// Transact runs fn inside one database transaction; fn's tx must be
	// passed back into the repo methods it calls.
	Transact(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type nodeRepo struct{ db *gorm.DB }

func NewNodeRepository(db *gorm.DB) NodeRepository { return &nodeRepo{db: db} }

func (r *nodeRepo) Transact(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// conn resolves the handle for a call: the caller's tx when inside one,
// otherwise the shared pool.
func (r *nodeRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *nodeRepo) Create(ctx context.Context, tx *gorm.DB, n *model.Node) error {
	return r.conn(tx).WithContext(ctx).Create(n).Error
}

func (r *nodeRepo) FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Node, error) {
	var n model.Node
	err := r.conn(tx).WithContext(ctx).Preload("Supplier").First(&n, id).Error
	return &n, err
}

func (r *nodeRepo) FindDetail(ctx context.Context, id uuid.UUID) (*model.Node, error) {
	var n model.Node
	err := r.db.WithContext(ctx).Preload("Supplier").Preload("Items").First(&n, id).Error
	return &n, err
}

// FindClients returns every node directly supplied by any of supplierIDs.
// One call per BFS frontier during level propagation.
func (r *nodeRepo) FindClients(ctx context.Context, tx *gorm.DB, supplierIDs []uuid.UUID) ([]model.Node, error) {
	var clients []model.Node
	err := r.conn(tx).WithContext(ctx).Where("supplier_id IN ?", supplierIDs).Find(&clients).Error
	return clients, err
}

func (r *nodeRepo) CountClients(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Node{}).Where("supplier_id = ?", id).Count(&count).Error
	return count, err
}

// Update writes the node row only. Save would otherwise upsert the loaded
// Supplier and Items associations alongside it.
func (r *nodeRepo) Update(ctx context.Context, tx *gorm.DB, n *model.Node) error {
	return r.conn(tx).WithContext(ctx).Omit(clause.Associations).Save(n).Error
}

// UpdateLevels persists recomputed hierarchy levels for a reassigned subtree.
func (r *nodeRepo) UpdateLevels(ctx context.Context, tx *gorm.DB, levels map[uuid.UUID]int) error {
	for id, level := range levels {
		if err := r.conn(tx).WithContext(ctx).Model(&model.Node{}).
			Where("id = ?", id).Update("level", level).Error; err != nil {
			return err
		}
	}
	return nil
}

// ClearDebt zeroes the debt of every node in ids and returns the number of
// rows touched. The caller decides whether a short count aborts the tx.
func (r *nodeRepo) ClearDebt(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error) {
	res := r.conn(tx).WithContext(ctx).Model(&model.Node{}).
		Where("id IN ?", ids).Update("debt", decimal.Zero)
	return res.RowsAffected, res.Error
}

func (r *nodeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Node{}, id).Error
}

// List translates the validated filter into a WHERE/ORDER/LIMIT chain.
// Filter validation (unknown keys, malformed ranges) happens before this is
// called; List only applies predicates.
func (r *nodeRepo) List(ctx context.Context, filter dto.NodeFilter) ([]model.Node, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Node{})

	if filter.Country != "" {
		q = q.Where("LOWER(country) = LOWER(?)", filter.Country)
	}
	if filter.CountryContains != "" {
		q = q.Where("country ILIKE ?", "%"+filter.CountryContains+"%")
	}
	if filter.City != "" {
		q = q.Where("LOWER(city) = LOWER(?)", filter.City)
	}
	if filter.CityContains != "" {
		q = q.Where("city ILIKE ?", "%"+filter.CityContains+"%")
	}
	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}
	if filter.Level != nil {
		q = q.Where("level = ?", *filter.Level)
	}
	if filter.LevelMin != nil {
		q = q.Where("level >= ?", *filter.LevelMin)
	}
	if filter.LevelMax != nil {
		q = q.Where("level <= ?", *filter.LevelMax)
	}
	if filter.HasSupplier != nil {
		if *filter.HasSupplier {
			q = q.Where("supplier_id IS NOT NULL")
		} else {
			q = q.Where("supplier_id IS NULL")
		}
	}
	if filter.SupplierID != "" {
		q = q.Where("supplier_id = ?", filter.SupplierID)
	}
	if filter.DebtMin != "" {
		q = q.Where("debt >= ?", filter.DebtMin)
	}
	if filter.DebtMax != "" {
		q = q.Where("debt <= ?", filter.DebtMax)
	}
	if filter.HasDebt != nil {
		if *filter.HasDebt {
			q = q.Where("debt > 0")
		} else {
			q = q.Where("debt = 0")
		}
	}
	if filter.NameContains != "" {
		q = q.Where("name ILIKE ?", "%"+filter.NameContains+"%")
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("name ILIKE ? OR email ILIKE ? OR city ILIKE ? OR country ILIKE ?",
			like, like, like, like)
	}
	if filter.CreatedAfter != "" {
		t, _ := time.Parse(time.RFC3339, filter.CreatedAfter)
		q = q.Where("created_at >= ?", t)
	}
	if filter.CreatedBefore != "" {
		t, _ := time.Parse(time.RFC3339, filter.CreatedBefore)
		q = q.Where("created_at <= ?", t)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var nodes []model.Node
	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Supplier").
		Order(nodeOrderClause(filter.Ordering)).
		Offset(offset).Limit(filter.Limit).
		Find(&nodes).Error

	return nodes, total, err
}

// nodeOrderClause maps a validated ordering parameter to SQL. "id" is the
// stable default so unfiltered listings page deterministically.
func nodeOrderClause(ordering string) string {
	if ordering == "" {
		return "id"
	}
	field := ordering
	dir := "ASC"
	if strings.HasPrefix(ordering, "-") {
		field = ordering[1:]
		dir = "DESC"
	}
	return field + " " + dir + ", id"
}

// Aggregate computes the statistics counters in a single scan. SUM(debt)
// stays in numeric all the way into decimal.Decimal — no float conversion.
func (r *nodeRepo) Aggregate(ctx context.Context) (*NodeAggregates, error) {
	var agg NodeAggregates
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*)                                     AS total_nodes,
		       COUNT(*) FILTER (WHERE kind = 'PRODUCER')    AS total_producers,
		       COUNT(*) FILTER (WHERE kind = 'NETWORK')     AS total_networks,
		       COUNT(*) FILTER (WHERE kind = 'RESELLER')    AS total_resellers,
		       COALESCE(SUM(debt), 0)                       AS total_debt,
		       COALESCE(SUM(level), 0)                      AS total_level
		FROM nodes`).Scan(&agg).Error
	return &agg, err
}
