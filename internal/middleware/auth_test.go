package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tradenet/internal/middleware"
	"tradenet/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

// memEmployeeStore satisfies only the lookup the middleware needs; the rest
// of the repository surface is unused here.
type memEmployeeStore struct {
	employees map[uuid.UUID]*model.Employee
}

func (s *memEmployeeStore) Create(context.Context, *model.Employee) error { return nil }

func (s *memEmployeeStore) FindByUsername(context.Context, string) (*model.Employee, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *memEmployeeStore) FindByID(_ context.Context, id uuid.UUID) (*model.Employee, error) {
	e, ok := s.employees[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

func (s *memEmployeeStore) List(context.Context) ([]model.Employee, error)    { return nil, nil }
func (s *memEmployeeStore) ListAll(context.Context) ([]model.Employee, error) { return nil, nil }
func (s *memEmployeeStore) Update(context.Context, *model.Employee) error    { return nil }
func (s *memEmployeeStore) Deactivate(context.Context, uuid.UUID) error      { return nil }
func (s *memEmployeeStore) Reactivate(context.Context, uuid.UUID) error      { return nil }

func signToken(t *testing.T, e *model.Employee) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  e.ID.String(),
		"username": e.Username,
		"role":     e.Role,
		"active":   e.Active,
		"exp":      time.Now().Add(time.Hour).Unix(),
		"iat":      time.Now().Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func protectedEngine(store *memEmployeeStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", middleware.JWTAuth(testSecret, store), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func doRequest(r *gin.Engine, token string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth_ActiveEmployee(t *testing.T) {
	e := &model.Employee{ID: uuid.New(), Username: "ana", Role: model.RoleEmployee, Active: true}
	store := &memEmployeeStore{employees: map[uuid.UUID]*model.Employee{e.ID: e}}

	rec := doRequest(protectedEngine(store), signToken(t, e))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTAuth_MissingToken(t *testing.T) {
	store := &memEmployeeStore{employees: map[uuid.UUID]*model.Employee{}}

	rec := doRequest(protectedEngine(store), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// Deactivation must cut access immediately even while the token, stamped
// active at issuance, is still within its validity window.
func TestJWTAuth_DeactivationRevokesLiveToken(t *testing.T) {
	e := &model.Employee{ID: uuid.New(), Username: "ana", Role: model.RoleEmployee, Active: true}
	store := &memEmployeeStore{employees: map[uuid.UUID]*model.Employee{e.ID: e}}
	r := protectedEngine(store)
	token := signToken(t, e)

	require.Equal(t, http.StatusOK, doRequest(r, token).Code)

	e.Active = false
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, token).Code)
}

func TestJWTAuth_DeletedEmployeeRejected(t *testing.T) {
	e := &model.Employee{ID: uuid.New(), Username: "ghost", Role: model.RoleEmployee, Active: true}
	store := &memEmployeeStore{employees: map[uuid.UUID]*model.Employee{}}

	rec := doRequest(protectedEngine(store), signToken(t, e))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
