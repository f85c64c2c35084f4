package service_test

import (
	"context"
	"errors"
	"strings"

	"tradenet/internal/dto"
	"tradenet/internal/model"
	"tradenet/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory NodeRepository stub ────────────────────────────────────────────

type stubNodeRepo struct {
	nodes map[uuid.UUID]*model.Node
}

func newStubNodeRepo() *stubNodeRepo {
	return &stubNodeRepo{nodes: make(map[uuid.UUID]*model.Node)}
}

func (r *stubNodeRepo) Create(_ context.Context, _ *gorm.DB, n *model.Node) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	cp := *n
	r.nodes[n.ID] = &cp
	return nil
}

func (r *stubNodeRepo) FindByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*model.Node, error) {
	n, ok := r.nodes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *n
	if cp.SupplierID != nil {
		if sup, ok := r.nodes[*cp.SupplierID]; ok {
			supCp := *sup
			cp.Supplier = &supCp
		}
	}
	return &cp, nil
}

func (r *stubNodeRepo) FindDetail(ctx context.Context, id uuid.UUID) (*model.Node, error) {
	return r.FindByID(ctx, nil, id)
}

func (r *stubNodeRepo) FindClients(_ context.Context, _ *gorm.DB, supplierIDs []uuid.UUID) ([]model.Node, error) {
	var clients []model.Node
	for _, n := range r.nodes {
		if n.SupplierID == nil {
			continue
		}
		for _, sid := range supplierIDs {
			if *n.SupplierID == sid {
				clients = append(clients, *n)
				break
			}
		}
	}
	return clients, nil
}

func (r *stubNodeRepo) CountClients(_ context.Context, id uuid.UUID) (int64, error) {
	var count int64
	for _, n := range r.nodes {
		if n.SupplierID != nil && *n.SupplierID == id {
			count++
		}
	}
	return count, nil
}

func (r *stubNodeRepo) Update(_ context.Context, _ *gorm.DB, n *model.Node) error {
	if _, ok := r.nodes[n.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *n
	cp.Supplier = nil
	r.nodes[n.ID] = &cp
	return nil
}

func (r *stubNodeRepo) UpdateLevels(_ context.Context, _ *gorm.DB, levels map[uuid.UUID]int) error {
	for id, level := range levels {
		n, ok := r.nodes[id]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		n.Level = level
	}
	return nil
}

func (r *stubNodeRepo) ClearDebt(_ context.Context, _ *gorm.DB, ids []uuid.UUID) (int64, error) {
	var affected int64
	for _, id := range ids {
		if n, ok := r.nodes[id]; ok {
			n.Debt = decimal.Zero
			affected++
		}
	}
	return affected, nil
}

func (r *stubNodeRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.nodes, id)
	return nil
}

func (r *stubNodeRepo) List(_ context.Context, filter dto.NodeFilter) ([]model.Node, int64, error) {
	var result []model.Node
	for _, n := range r.nodes {
		if filter.Country != "" && !strings.EqualFold(n.Country, filter.Country) {
			continue
		}
		if filter.Kind != "" && n.Kind != filter.Kind {
			continue
		}
		result = append(result, *n)
	}
	return result, int64(len(result)), nil
}

func (r *stubNodeRepo) Aggregate(_ context.Context) (*repository.NodeAggregates, error) {
	agg := &repository.NodeAggregates{TotalDebt: decimal.Zero}
	for _, n := range r.nodes {
		agg.TotalNodes++
		switch n.Kind {
		case model.KindProducer:
			agg.TotalProducers++
		case model.KindNetwork:
			agg.TotalNetworks++
		case model.KindReseller:
			agg.TotalResellers++
		}
		agg.TotalDebt = agg.TotalDebt.Add(n.Debt)
		agg.TotalLevel += int64(n.Level)
	}
	return agg, nil
}

// Transact snapshots the store and restores it when fn fails, mimicking the
// all-or-nothing contract of the real transaction.
func (r *stubNodeRepo) Transact(_ context.Context, fn func(tx *gorm.DB) error) error {
	snapshot := make(map[uuid.UUID]*model.Node, len(r.nodes))
	for id, n := range r.nodes {
		cp := *n
		snapshot[id] = &cp
	}
	if err := fn(nil); err != nil {
		r.nodes = snapshot
		return err
	}
	return nil
}

var _ repository.NodeRepository = (*stubNodeRepo)(nil)

// ── In-memory ItemRepository stub ────────────────────────────────────────────

type stubItemRepo struct {
	items map[uuid.UUID]*model.Item
}

func newStubItemRepo() *stubItemRepo {
	return &stubItemRepo{items: make(map[uuid.UUID]*model.Item)}
}

func (r *stubItemRepo) Create(_ context.Context, it *model.Item) error {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	for _, existing := range r.items {
		if existing.NodeID == it.NodeID && existing.Name == it.Name && existing.Model == it.Model {
			return errors.New("unique constraint violation")
		}
	}
	cp := *it
	cp.Node = nil
	r.items[it.ID] = &cp
	return nil
}

func (r *stubItemRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Item, error) {
	it, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *it
	return &cp, nil
}

func (r *stubItemRepo) List(_ context.Context, filter dto.ItemFilter) ([]model.Item, int64, error) {
	var result []model.Item
	for _, it := range r.items {
		if filter.NodeID != "" && it.NodeID.String() != filter.NodeID {
			continue
		}
		result = append(result, *it)
	}
	return result, int64(len(result)), nil
}

func (r *stubItemRepo) Update(_ context.Context, it *model.Item) error {
	if _, ok := r.items[it.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *it
	cp.Node = nil
	r.items[it.ID] = &cp
	return nil
}

func (r *stubItemRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.items, id)
	return nil
}

var _ repository.ItemRepository = (*stubItemRepo)(nil)

// ── In-memory EmployeeRepository stub ────────────────────────────────────────

type stubEmployeeRepo struct {
	employees map[uuid.UUID]*model.Employee
}

func newStubEmployeeRepo() *stubEmployeeRepo {
	return &stubEmployeeRepo{employees: make(map[uuid.UUID]*model.Employee)}
}

func (r *stubEmployeeRepo) Create(_ context.Context, e *model.Employee) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	for _, existing := range r.employees {
		if existing.Username == e.Username {
			return errors.New("unique constraint violation")
		}
	}
	cp := *e
	r.employees[e.ID] = &cp
	return nil
}

func (r *stubEmployeeRepo) FindByUsername(_ context.Context, username string) (*model.Employee, error) {
	for _, e := range r.employees {
		if e.Username == username && e.Active {
			cp := *e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubEmployeeRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Employee, error) {
	e, ok := r.employees[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *stubEmployeeRepo) List(_ context.Context) ([]model.Employee, error) {
	var result []model.Employee
	for _, e := range r.employees {
		if e.Active {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (r *stubEmployeeRepo) ListAll(_ context.Context) ([]model.Employee, error) {
	var result []model.Employee
	for _, e := range r.employees {
		result = append(result, *e)
	}
	return result, nil
}

func (r *stubEmployeeRepo) Update(_ context.Context, e *model.Employee) error {
	cp := *e
	r.employees[e.ID] = &cp
	return nil
}

func (r *stubEmployeeRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	e, ok := r.employees[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.Active = false
	return nil
}

func (r *stubEmployeeRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	e, ok := r.employees[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.Active = true
	return nil
}

var _ repository.EmployeeRepository = (*stubEmployeeRepo)(nil)
