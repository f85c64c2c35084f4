package service

import (
	"context"
	"errors"

	"tradenet/internal/apperr"
	"tradenet/internal/dto"
	"tradenet/internal/model"
	"tradenet/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// NodeService is the business logic contract for supply-hierarchy nodes.
// Every write keeps the level invariant (level = supplier level + 1, roots
// at 0) and the debt guard (debt never changes through Update).
type NodeService interface {
	Create(ctx context.Context, req dto.CreateNodeRequest) (*dto.NodeDetailResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.NodeDetailResponse, error)
	List(ctx context.Context, filter dto.NodeFilter) (*dto.NodeListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateNodeRequest) (*dto.NodeDetailResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ClearDebt(ctx context.Context, id uuid.UUID) (*dto.NodeDetailResponse, error)
	ClearDebtBulk(ctx context.Context, req dto.ClearDebtBulkRequest) (int64, error)
}

type nodeService struct {
	repo repository.NodeRepository
	calc *HierarchyCalculator
	rdb  *redis.Client
}

func NewNodeService(repo repository.NodeRepository, calc *HierarchyCalculator, rdb *redis.Client) NodeService {
	return &nodeService{repo: repo, calc: calc, rdb: rdb}
}

// ── Create ────────────────────────────────────────────────────────────────────

func (s *nodeService) Create(ctx context.Context, req dto.CreateNodeRequest) (*dto.NodeDetailResponse, error) {
	supplierID, err := parseOptionalID(req.SupplierID)
	if err != nil {
		return nil, err
	}
	if err := validateKindSupplier(req.Kind, supplierID != nil); err != nil {
		return nil, err
	}

	node := &model.Node{
		Name:        req.Name,
		Kind:        req.Kind,
		Email:       req.Email,
		Country:     req.Country,
		City:        req.City,
		Street:      req.Street,
		HouseNumber: req.HouseNumber,
		SupplierID:  supplierID,
	}

	if supplierID != nil {
		supplier, err := s.repo.FindByID(ctx, nil, *supplierID)
		if err != nil {
			return nil, supplierRefErr(err)
		}
		node.Level = supplier.Level + 1
		node.Supplier = supplier
	}

	if err := s.repo.Create(ctx, nil, node); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx)
	return nodeDetail(node), nil
}

// ── Read ──────────────────────────────────────────────────────────────────────

func (s *nodeService) GetByID(ctx context.Context, id uuid.UUID) (*dto.NodeDetailResponse, error) {
	node, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		return nil, notFoundErr(err, "node")
	}
	return nodeDetail(node), nil
}

func (s *nodeService) List(ctx context.Context, filter dto.NodeFilter) (*dto.NodeListResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	nodes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.NodeResponse, len(nodes))
	for i := range nodes {
		data[i] = nodeSummary(&nodes[i])
	}
	return &dto.NodeListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

// ── Update ────────────────────────────────────────────────────────────────────

// Update applies the closed allow-list of mutable fields. A supplier change
// runs the full cycle check and level propagation inside one transaction so
// no observer can see a level that is stale relative to the new chain.
func (s *nodeService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateNodeRequest) (*dto.NodeDetailResponse, error) {
	newSupplierID, err := parseOptionalID(req.SupplierID)
	if err != nil {
		return nil, err
	}

	err = s.repo.Transact(ctx, func(tx *gorm.DB) error {
		node, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return notFoundErr(err, "node")
		}

		if req.Name != nil {
			node.Name = *req.Name
		}
		if req.Kind != nil {
			node.Kind = *req.Kind
		}
		if req.Email != nil {
			node.Email = *req.Email
		}
		if req.Country != nil {
			node.Country = *req.Country
		}
		if req.City != nil {
			node.City = *req.City
		}
		if req.Street != nil {
			node.Street = *req.Street
		}
		if req.HouseNumber != nil {
			node.HouseNumber = *req.HouseNumber
		}

		effectiveSupplier := node.SupplierID
		if req.SupplierSet {
			effectiveSupplier = newSupplierID
		}
		if err := validateKindSupplier(node.Kind, effectiveSupplier != nil); err != nil {
			return err
		}

		if req.SupplierSet {
			if err := s.reassignSupplier(ctx, tx, node, newSupplierID); err != nil {
				return err
			}
		}

		return s.repo.Update(ctx, tx, node)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateStats(ctx)
	return s.GetByID(ctx, id)
}

// reassignSupplier validates the candidate, updates the node's level, and
// propagates new levels through the subtree. Reassigning to the current
// supplier still re-validates but skips propagation.
func (s *nodeService) reassignSupplier(ctx context.Context, tx *gorm.DB, node *model.Node, newSupplierID *uuid.UUID) error {
	var candidate *model.Node
	if newSupplierID != nil {
		found, err := s.repo.FindByID(ctx, tx, *newSupplierID)
		if err != nil {
			return supplierRefErr(err)
		}
		candidate = found
	}

	level, err := s.calc.LevelUnder(ctx, tx, node.ID, candidate)
	if err != nil {
		return err
	}

	unchanged := equalID(node.SupplierID, newSupplierID)
	node.SupplierID = newSupplierID
	node.Supplier = candidate
	node.Level = level
	if unchanged {
		return nil
	}

	levels, err := s.calc.Propagate(ctx, tx, node.ID, level)
	if err != nil {
		return err
	}
	return s.repo.UpdateLevels(ctx, tx, levels)
}

// ── Delete ────────────────────────────────────────────────────────────────────

// Delete refuses to remove a node that still supplies others; the caller
// must re-parent or delete the dependents first. Owned items go with the
// node (FK cascade).
func (s *nodeService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, nil, id); err != nil {
		return notFoundErr(err, "node")
	}
	dependents, err := s.repo.CountClients(ctx, id)
	if err != nil {
		return err
	}
	if dependents > 0 {
		return apperr.Conflict("node still supplies dependent nodes")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateStats(ctx)
	return nil
}

// ── Debt guard ────────────────────────────────────────────────────────────────

func (s *nodeService) ClearDebt(ctx context.Context, id uuid.UUID) (*dto.NodeDetailResponse, error) {
	if _, err := s.repo.FindByID(ctx, nil, id); err != nil {
		return nil, notFoundErr(err, "node")
	}
	if _, err := s.repo.ClearDebt(ctx, nil, []uuid.UUID{id}); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx)
	return s.GetByID(ctx, id)
}

// ClearDebtBulk wipes the debt of every target in one transaction. A missing
// id aborts the whole batch.
func (s *nodeService) ClearDebtBulk(ctx context.Context, req dto.ClearDebtBulkRequest) (int64, error) {
	ids := make([]uuid.UUID, 0, len(req.IDs))
	seen := make(map[uuid.UUID]struct{}, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return 0, apperr.Validation("invalid node id " + raw)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	var cleared int64
	err := s.repo.Transact(ctx, func(tx *gorm.DB) error {
		n, err := s.repo.ClearDebt(ctx, tx, ids)
		if err != nil {
			return err
		}
		if n != int64(len(ids)) {
			return apperr.NotFound("node")
		}
		cleared = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.invalidateStats(ctx)
	return cleared, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *nodeService) invalidateStats(ctx context.Context) {
	if s.rdb != nil {
		s.rdb.Del(ctx, statsCacheKey)
	}
}

// validateKindSupplier enforces the kind/supplier pairing: producers top the
// hierarchy and may not have a supplier. Networks and resellers may be roots.
func validateKindSupplier(kind string, hasSupplier bool) error {
	if kind == model.KindProducer && hasSupplier {
		return apperr.Validation("a producer cannot have a supplier")
	}
	return nil
}

func parseOptionalID(raw *string) (*uuid.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, apperr.Validation("invalid supplier id")
	}
	return &id, nil
}

func equalID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func notFoundErr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(what)
	}
	return err
}

func supplierRefErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Validation("supplier not found")
	}
	return err
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// ── DTO mapping ───────────────────────────────────────────────────────────────

func nodeSummary(n *model.Node) dto.NodeResponse {
	resp := dto.NodeResponse{
		ID:        n.ID.String(),
		Name:      n.Name,
		Kind:      n.Kind,
		Email:     n.Email,
		Country:   n.Country,
		City:      n.City,
		Level:     n.Level,
		Debt:      n.Debt,
		CreatedAt: n.CreatedAt,
	}
	if n.SupplierID != nil {
		sid := n.SupplierID.String()
		resp.SupplierID = &sid
	}
	if n.Supplier != nil {
		resp.SupplierName = &n.Supplier.Name
	}
	return resp
}

func nodeDetail(n *model.Node) *dto.NodeDetailResponse {
	items := make([]dto.ItemResponse, len(n.Items))
	for i := range n.Items {
		items[i] = itemSummary(&n.Items[i])
	}
	return &dto.NodeDetailResponse{
		NodeResponse: nodeSummary(n),
		Street:       n.Street,
		HouseNumber:  n.HouseNumber,
		FullAddress:  n.FullAddress(),
		Items:        items,
		UpdatedAt:    n.UpdatedAt,
	}
}
