package repository

import (
	"context"
	"strings"
	"time"

	"tradenet/internal/dto"
	"tradenet/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ItemRepository interface {
	Create(ctx context.Context, it *model.Item) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Item, error)
	List(ctx context.Context, filter dto.ItemFilter) ([]model.Item, int64, error)
	Update(ctx context.Context, it *model.Item) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type itemRepo struct{ db *gorm.DB }

func NewItemRepository(db *gorm.DB) ItemRepository { return &itemRepo{db: db} }

func (r *itemRepo) Create(ctx context.Context, it *model.Item) error {
	return r.db.WithContext(ctx).Create(it).Error
}

func (r *itemRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	var it model.Item
	err := r.db.WithContext(ctx).Preload("Node").First(&it, id).Error
	return &it, err
}

func (r *itemRepo) List(ctx context.Context, filter dto.ItemFilter) ([]model.Item, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Item{})

	if filter.NameContains != "" {
		q = q.Where("items.name ILIKE ?", "%"+filter.NameContains+"%")
	}
	if filter.ModelContains != "" {
		q = q.Where("items.model ILIKE ?", "%"+filter.ModelContains+"%")
	}
	if filter.NodeID != "" {
		q = q.Where("items.node_id = ?", filter.NodeID)
	}
	if filter.Country != "" {
		// Filter by the owning node's country
		q = q.Joins("JOIN nodes ON nodes.id = items.node_id").
			Where("LOWER(nodes.country) = LOWER(?)", filter.Country)
	}
	if filter.ReleaseDate != "" {
		t, _ := time.Parse("2006-01-02", filter.ReleaseDate)
		q = q.Where("items.release_date = ?", t)
	}
	if filter.ReleasedAfter != "" {
		t, _ := time.Parse("2006-01-02", filter.ReleasedAfter)
		q = q.Where("items.release_date >= ?", t)
	}
	if filter.ReleasedBefore != "" {
		t, _ := time.Parse("2006-01-02", filter.ReleasedBefore)
		q = q.Where("items.release_date <= ?", t)
	}
	if filter.ReleaseYear != nil {
		q = q.Where("EXTRACT(YEAR FROM items.release_date) = ?", *filter.ReleaseYear)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.Item
	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Node").
		Order(itemOrderClause(filter.Ordering)).
		Offset(offset).Limit(filter.Limit).
		Find(&items).Error

	return items, total, err
}

func itemOrderClause(ordering string) string {
	if ordering == "" {
		return "items.id"
	}
	field := ordering
	dir := "ASC"
	if strings.HasPrefix(ordering, "-") {
		field = ordering[1:]
		dir = "DESC"
	}
	return "items." + field + " " + dir + ", items.id"
}

func (r *itemRepo) Update(ctx context.Context, it *model.Item) error {
	return r.db.WithContext(ctx).Save(it).Error
}

func (r *itemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Item{}, id).Error
}
