package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tradenet/internal/apperr"
	"tradenet/internal/dto"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonContext(t *testing.T, method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, rec
}

func TestBindGuarded_ProtectedFieldRejected(t *testing.T) {
	for _, field := range []string{"debt", "level", "id"} {
		c, rec := jsonContext(t, http.MethodPatch, "/v1/nodes/x",
			`{"name": "Renamed", "`+field+`": "0"}`)

		var req dto.UpdateNodeRequest
		_, ok := bindGuarded(c, &req, nodeProtectedFields...)

		assert.False(t, ok, field)
		assert.Equal(t, http.StatusBadRequest, rec.Code, field)

		var resp apperr.APIError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.Detail, field)
	}
}

func TestBindGuarded_ReportsExplicitNull(t *testing.T) {
	c, _ := jsonContext(t, http.MethodPatch, "/v1/nodes/x",
		`{"supplier_id": null}`)

	var req dto.UpdateNodeRequest
	raw, ok := bindGuarded(c, &req, nodeProtectedFields...)

	require.True(t, ok)
	_, present := raw["supplier_id"]
	assert.True(t, present)
	assert.Nil(t, req.SupplierID)
}

func TestBindGuarded_AbsentKeyNotReported(t *testing.T) {
	c, _ := jsonContext(t, http.MethodPatch, "/v1/nodes/x",
		`{"name": "Renamed"}`)

	var req dto.UpdateNodeRequest
	raw, ok := bindGuarded(c, &req, nodeProtectedFields...)

	require.True(t, ok)
	_, present := raw["supplier_id"]
	assert.False(t, present)
}

func TestBindGuarded_ValidationFailure(t *testing.T) {
	c, rec := jsonContext(t, http.MethodPatch, "/v1/nodes/x",
		`{"email": "not-an-email"}`)

	var req dto.UpdateNodeRequest
	_, ok := bindGuarded(c, &req, nodeProtectedFields...)

	assert.False(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCheckQueryKeys(t *testing.T) {
	c, rec := jsonContext(t, http.MethodGet, "/v1/nodes?county=DE", "")

	ok := checkQueryKeys(c, dto.NodeFilterKeys)

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp apperr.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Detail, "county")
}

func TestCheckQueryKeys_AllowsKnownKeys(t *testing.T) {
	c, _ := jsonContext(t, http.MethodGet, "/v1/nodes?country=DE&debt_min=100&ordering=-debt", "")

	assert.True(t, checkQueryKeys(c, dto.NodeFilterKeys))
}
