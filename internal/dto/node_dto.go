package dto

import (
	"strconv"
	"strings"
	"time"

	"tradenet/internal/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CreateNodeRequest carries the writable attributes of a new node. Debt and
// level are intentionally absent: the update surface is a closed allow-list
// and those fields are only ever changed by their dedicated operations.
type CreateNodeRequest struct {
	Name        string  `json:"name"         validate:"required,min=2,max=255"`
	Kind        string  `json:"kind"         validate:"required,oneof=PRODUCER NETWORK RESELLER"`
	Email       string  `json:"email"        validate:"required,email"`
	Country     string  `json:"country"      validate:"required,max=100"`
	City        string  `json:"city"         validate:"required,max=100"`
	Street      string  `json:"street"       validate:"required,max=255"`
	HouseNumber string  `json:"house_number" validate:"required,max=20"`
	SupplierID  *string `json:"supplier_id"  validate:"omitempty,uuid"`
}

// UpdateNodeRequest carries partial updates. Nil means "leave unchanged".
type UpdateNodeRequest struct {
	Name        *string `json:"name"         validate:"omitempty,min=2,max=255"`
	Kind        *string `json:"kind"         validate:"omitempty,oneof=PRODUCER NETWORK RESELLER"`
	Email       *string `json:"email"        validate:"omitempty,email"`
	Country     *string `json:"country"      validate:"omitempty,max=100"`
	City        *string `json:"city"         validate:"omitempty,max=100"`
	Street      *string `json:"street"       validate:"omitempty,max=255"`
	HouseNumber *string `json:"house_number" validate:"omitempty,max=20"`
	// SupplierSet distinguishes "supplier_id absent" from "supplier_id: null"
	// (the latter re-roots the node). Populated by the handler from the raw
	// payload, not bound from JSON.
	SupplierID  *string `json:"supplier_id"  validate:"omitempty,uuid"`
	SupplierSet bool    `json:"-"`
}

// ClearDebtBulkRequest targets a set of nodes for one atomic debt wipe.
type ClearDebtBulkRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,uuid"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

// NodeFilter is the query surface of GET /v1/nodes. All predicates combine
// with AND; Search is an OR over name/email/city/country.
type NodeFilter struct {
	Country         string `form:"country"`
	CountryContains string `form:"country_contains"`
	City            string `form:"city"`
	CityContains    string `form:"city_contains"`
	Kind            string `form:"kind"`
	Level           *int   `form:"level"`
	LevelMin        *int   `form:"level_min"`
	LevelMax        *int   `form:"level_max"`
	HasSupplier     *bool  `form:"has_supplier"`
	SupplierID      string `form:"supplier_id"`
	DebtMin         string `form:"debt_min"`
	DebtMax         string `form:"debt_max"`
	HasDebt         *bool  `form:"has_debt"`
	NameContains    string `form:"name_contains"`
	Search          string `form:"search"`
	CreatedAfter    string `form:"created_after"`
	CreatedBefore   string `form:"created_before"`
	Ordering        string `form:"ordering"`
	Page            int    `form:"page,default=1"  validate:"min=1"`
	Limit           int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// NodeFilterKeys is the closed set of query parameters GET /v1/nodes accepts.
// Anything else in the query string is an InvalidQueryError.
var NodeFilterKeys = map[string]struct{}{
	"country": {}, "country_contains": {}, "city": {}, "city_contains": {},
	"kind": {}, "level": {}, "level_min": {}, "level_max": {},
	"has_supplier": {}, "supplier_id": {}, "debt_min": {}, "debt_max": {},
	"has_debt": {}, "name_contains": {}, "search": {},
	"created_after": {}, "created_before": {},
	"ordering": {}, "page": {}, "limit": {},
}

var nodeOrderingFields = map[string]struct{}{
	"name": {}, "level": {}, "debt": {}, "created_at": {},
}

// Validate rejects unknown ordering fields, malformed ranges, and malformed
// values that gin's loose query binding lets through.
func (f *NodeFilter) Validate() error {
	if f.Kind != "" && f.Kind != "PRODUCER" && f.Kind != "NETWORK" && f.Kind != "RESELLER" {
		return apperr.InvalidQuery("unknown kind " + strconv.Quote(f.Kind))
	}
	if f.Ordering != "" {
		field := strings.TrimPrefix(f.Ordering, "-")
		if _, ok := nodeOrderingFields[field]; !ok {
			return apperr.InvalidQuery("unknown ordering field " + strconv.Quote(field))
		}
	}
	if f.SupplierID != "" {
		if _, err := uuid.Parse(f.SupplierID); err != nil {
			return apperr.InvalidQuery("supplier_id must be a UUID")
		}
	}
	var min, max decimal.Decimal
	var hasMin, hasMax bool
	var err error
	if f.DebtMin != "" {
		if min, err = decimal.NewFromString(f.DebtMin); err != nil {
			return apperr.InvalidQuery("debt_min is not a number")
		}
		hasMin = true
	}
	if f.DebtMax != "" {
		if max, err = decimal.NewFromString(f.DebtMax); err != nil {
			return apperr.InvalidQuery("debt_max is not a number")
		}
		hasMax = true
	}
	if hasMin && hasMax && min.GreaterThan(max) {
		return apperr.InvalidQuery("debt_min is greater than debt_max")
	}
	if f.LevelMin != nil && f.LevelMax != nil && *f.LevelMin > *f.LevelMax {
		return apperr.InvalidQuery("level_min is greater than level_max")
	}
	for name, v := range map[string]string{
		"created_after": f.CreatedAfter, "created_before": f.CreatedBefore,
	} {
		if v == "" {
			continue
		}
		if _, err := time.Parse(time.RFC3339, v); err != nil {
			return apperr.InvalidQuery(name + " must be an RFC 3339 timestamp")
		}
	}
	return nil
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type NodeResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Kind         string          `json:"kind"`
	Email        string          `json:"email"`
	Country      string          `json:"country"`
	City         string          `json:"city"`
	SupplierID   *string         `json:"supplier_id"`
	SupplierName *string         `json:"supplier_name"`
	Level        int             `json:"level"`
	Debt         decimal.Decimal `json:"debt"`
	CreatedAt    time.Time       `json:"created_at"`
}

// NodeDetailResponse extends the list shape with address and owned items.
type NodeDetailResponse struct {
	NodeResponse
	Street      string         `json:"street"`
	HouseNumber string         `json:"house_number"`
	FullAddress string         `json:"full_address"`
	Items       []ItemResponse `json:"items"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type NodeListResponse struct {
	Data       []NodeResponse `json:"data"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}

type ClearDebtBulkResponse struct {
	Cleared int64 `json:"cleared"`
}

// StatisticsResponse is the aggregate over the whole node collection.
// TotalDebt is decimal-exact; AverageLevel is rounded half-up to 2 places.
type StatisticsResponse struct {
	TotalNodes     int64           `json:"total_nodes"`
	TotalProducers int64           `json:"total_producers"`
	TotalNetworks  int64           `json:"total_networks"`
	TotalResellers int64           `json:"total_resellers"`
	TotalDebt      decimal.Decimal `json:"total_debt"`
	AverageLevel   decimal.Decimal `json:"average_level"`
}
