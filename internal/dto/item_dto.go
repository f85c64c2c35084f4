package dto

import (
	"strconv"
	"strings"
	"time"

	"tradenet/internal/apperr"

	"github.com/google/uuid"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateItemRequest struct {
	NodeID      string `json:"node_id"      validate:"required,uuid"`
	Name        string `json:"name"         validate:"required,min=1,max=255"`
	Model       string `json:"model"        validate:"required,min=1,max=100"`
	ReleaseDate string `json:"release_date" validate:"required,datetime=2006-01-02"`
}

type UpdateItemRequest struct {
	Name        *string `json:"name"         validate:"omitempty,min=1,max=255"`
	Model       *string `json:"model"        validate:"omitempty,min=1,max=100"`
	ReleaseDate *string `json:"release_date" validate:"omitempty,datetime=2006-01-02"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ItemFilter struct {
	NameContains   string `form:"name_contains"`
	ModelContains  string `form:"model_contains"`
	NodeID         string `form:"node_id"`
	Country        string `form:"country"`
	ReleaseDate    string `form:"release_date"`
	ReleasedAfter  string `form:"released_after"`
	ReleasedBefore string `form:"released_before"`
	ReleaseYear    *int   `form:"release_year"`
	Ordering       string `form:"ordering"`
	Page           int    `form:"page,default=1"  validate:"min=1"`
	Limit          int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ItemFilterKeys is the closed set of query parameters GET /v1/items accepts.
var ItemFilterKeys = map[string]struct{}{
	"name_contains": {}, "model_contains": {}, "node_id": {}, "country": {},
	"release_date": {}, "released_after": {}, "released_before": {},
	"release_year": {}, "ordering": {}, "page": {}, "limit": {},
}

var itemOrderingFields = map[string]struct{}{
	"name": {}, "model": {}, "release_date": {},
}

func (f *ItemFilter) Validate() error {
	if f.Ordering != "" {
		field := strings.TrimPrefix(f.Ordering, "-")
		if _, ok := itemOrderingFields[field]; !ok {
			return apperr.InvalidQuery("unknown ordering field " + strconv.Quote(field))
		}
	}
	if f.NodeID != "" {
		if _, err := uuid.Parse(f.NodeID); err != nil {
			return apperr.InvalidQuery("node_id must be a UUID")
		}
	}
	for name, v := range map[string]string{
		"release_date": f.ReleaseDate, "released_after": f.ReleasedAfter,
		"released_before": f.ReleasedBefore,
	} {
		if v == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", v); err != nil {
			return apperr.InvalidQuery(name + " must be a YYYY-MM-DD date")
		}
	}
	return nil
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemResponse struct {
	ID          string  `json:"id"`
	NodeID      string  `json:"node_id"`
	NodeName    *string `json:"node_name,omitempty"`
	Name        string  `json:"name"`
	Model       string  `json:"model"`
	ReleaseDate string  `json:"release_date"`
}

type ItemListResponse struct {
	Data       []ItemResponse `json:"data"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}
