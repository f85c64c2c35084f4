package service

import (
	"context"
	"errors"
	"time"

	"tradenet/internal/apperr"
	"tradenet/internal/dto"
	"tradenet/internal/model"
	"tradenet/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const releaseDateLayout = "2006-01-02"

// ItemService is the business logic contract for catalog items.
type ItemService interface {
	Create(ctx context.Context, req dto.CreateItemRequest) (*dto.ItemResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ItemResponse, error)
	List(ctx context.Context, filter dto.ItemFilter) (*dto.ItemListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateItemRequest) (*dto.ItemResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type itemService struct {
	repo     repository.ItemRepository
	nodeRepo repository.NodeRepository
}

func NewItemService(repo repository.ItemRepository, nodeRepo repository.NodeRepository) ItemService {
	return &itemService{repo: repo, nodeRepo: nodeRepo}
}

func (s *itemService) Create(ctx context.Context, req dto.CreateItemRequest) (*dto.ItemResponse, error) {
	nodeID, err := uuid.Parse(req.NodeID)
	if err != nil {
		return nil, apperr.Validation("invalid node id")
	}
	node, err := s.nodeRepo.FindByID(ctx, nil, nodeID)
	if err != nil {
		return nil, nodeRefErr(err)
	}

	releaseDate, err := time.Parse(releaseDateLayout, req.ReleaseDate)
	if err != nil {
		return nil, apperr.Validation("release_date must be a YYYY-MM-DD date")
	}

	item := &model.Item{
		NodeID:      node.ID,
		Name:        req.Name,
		Model:       req.Model,
		ReleaseDate: releaseDate,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	item.Node = node
	resp := itemSummary(item)
	return &resp, nil
}

func (s *itemService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ItemResponse, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundErr(err, "item")
	}
	resp := itemSummary(item)
	return &resp, nil
}

func (s *itemService) List(ctx context.Context, filter dto.ItemFilter) (*dto.ItemListResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ItemResponse, len(items))
	for i := range items {
		data[i] = itemSummary(&items[i])
	}
	return &dto.ItemListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

func (s *itemService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundErr(err, "item")
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Model != nil {
		item.Model = *req.Model
	}
	if req.ReleaseDate != nil {
		releaseDate, err := time.Parse(releaseDateLayout, *req.ReleaseDate)
		if err != nil {
			return nil, apperr.Validation("release_date must be a YYYY-MM-DD date")
		}
		item.ReleaseDate = releaseDate
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	resp := itemSummary(item)
	return &resp, nil
}

func (s *itemService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return notFoundErr(err, "item")
	}
	return s.repo.Delete(ctx, id)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func nodeRefErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Validation("node not found")
	}
	return err
}

func itemSummary(it *model.Item) dto.ItemResponse {
	resp := dto.ItemResponse{
		ID:          it.ID.String(),
		NodeID:      it.NodeID.String(),
		Name:        it.Name,
		Model:       it.Model,
		ReleaseDate: it.ReleaseDate.Format(releaseDateLayout),
	}
	if it.Node != nil {
		resp.NodeName = &it.Node.Name
	}
	return resp
}
