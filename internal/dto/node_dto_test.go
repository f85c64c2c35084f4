package dto

import (
	"testing"

	"tradenet/internal/apperr"

	"github.com/stretchr/testify/assert"
)

func intPtr(n int) *int { return &n }

func TestNodeFilterValidate(t *testing.T) {
	cases := []struct {
		name    string
		filter  NodeFilter
		wantErr bool
	}{
		{"empty", NodeFilter{}, false},
		{"known kind", NodeFilter{Kind: "PRODUCER"}, false},
		{"unknown kind", NodeFilter{Kind: "FACTORY"}, true},
		{"lowercase kind", NodeFilter{Kind: "producer"}, true},
		{"ordering asc", NodeFilter{Ordering: "debt"}, false},
		{"ordering desc", NodeFilter{Ordering: "-level"}, false},
		{"ordering unknown field", NodeFilter{Ordering: "email"}, true},
		{"debt range ok", NodeFilter{DebtMin: "10", DebtMax: "100.50"}, false},
		{"debt_min not a number", NodeFilter{DebtMin: "lots"}, true},
		{"debt range inverted", NodeFilter{DebtMin: "200", DebtMax: "100"}, true},
		{"level range ok", NodeFilter{LevelMin: intPtr(0), LevelMax: intPtr(2)}, false},
		{"level range inverted", NodeFilter{LevelMin: intPtr(3), LevelMax: intPtr(1)}, true},
		{"created_after rfc3339", NodeFilter{CreatedAfter: "2024-01-01T00:00:00Z"}, false},
		{"created_after date only", NodeFilter{CreatedAfter: "2024-01-01"}, true},
		{"supplier_id uuid", NodeFilter{SupplierID: "bfb1d2fc-4f5a-4c8e-9b32-5f1a2f0c9e11"}, false},
		{"supplier_id not a uuid", NodeFilter{SupplierID: "abc"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.filter.Validate()
			if tc.wantErr {
				assert.True(t, apperr.IsKind(err, apperr.KindInvalidQuery))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestItemFilterValidate(t *testing.T) {
	assert.NoError(t, (&ItemFilter{Ordering: "-release_date"}).Validate())
	assert.Error(t, (&ItemFilter{Ordering: "country"}).Validate())
	assert.NoError(t, (&ItemFilter{ReleaseDate: "2024-03-15"}).Validate())
	assert.Error(t, (&ItemFilter{ReleasedAfter: "15/03/2024"}).Validate())
	assert.NoError(t, (&ItemFilter{NodeID: "bfb1d2fc-4f5a-4c8e-9b32-5f1a2f0c9e11"}).Validate())
	assert.Error(t, (&ItemFilter{NodeID: "abc"}).Validate())
}
