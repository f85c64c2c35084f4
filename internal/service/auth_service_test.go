package service_test

import (
	"context"
	"testing"

	"tradenet/internal/apperr"
	"tradenet/internal/config"
	"tradenet/internal/dto"
	"tradenet/internal/model"
	"tradenet/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "test-secret",
		JWTExpirationHours: 1,
		JWTRefreshHours:    2,
	}
}

func seedEmployee(repo *stubEmployeeRepo, username, password, role string) *model.Employee {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	e := &model.Employee{
		ID:           uuid.New(),
		Username:     username,
		Name:         username,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	}
	repo.employees[e.ID] = e
	return e
}

func TestLogin(t *testing.T) {
	repo := newStubEmployeeRepo()
	svc := service.NewAuthService(repo, testConfig())
	seedEmployee(repo, "ana", "s3cret", model.RoleAdmin)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "ana", Password: "s3cret",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 3600, resp.ExpiresIn)
	assert.Equal(t, model.RoleAdmin, resp.User.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newStubEmployeeRepo()
	svc := service.NewAuthService(repo, testConfig())
	seedEmployee(repo, "ana", "s3cret", model.RoleEmployee)

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "ana", Password: "wrong",
	})

	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))
}

func TestLogin_DeactivatedEmployee(t *testing.T) {
	repo := newStubEmployeeRepo()
	svc := service.NewAuthService(repo, testConfig())
	e := seedEmployee(repo, "ana", "s3cret", model.RoleEmployee)
	e.Active = false

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "ana", Password: "s3cret",
	})

	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))
}

func TestRefresh(t *testing.T) {
	repo := newStubEmployeeRepo()
	svc := service.NewAuthService(repo, testConfig())
	seedEmployee(repo, "ana", "s3cret", model.RoleEmployee)

	login, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "ana", Password: "s3cret",
	})
	require.NoError(t, err)

	resp, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestRefresh_GarbageToken(t *testing.T) {
	repo := newStubEmployeeRepo()
	svc := service.NewAuthService(repo, testConfig())

	_, err := svc.Refresh(context.Background(), "not-a-jwt")
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))
}

func TestRefresh_DeactivatedAfterLogin(t *testing.T) {
	repo := newStubEmployeeRepo()
	svc := service.NewAuthService(repo, testConfig())
	e := seedEmployee(repo, "ana", "s3cret", model.RoleEmployee)

	login, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "ana", Password: "s3cret",
	})
	require.NoError(t, err)

	e.Active = false
	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))
}

func TestCreateEmployeeAndList(t *testing.T) {
	repo := newStubEmployeeRepo()
	svc := service.NewAuthService(repo, testConfig())

	created, err := svc.CreateEmployee(context.Background(), dto.CreateEmployeeRequest{
		Username: "bruno", Name: "Bruno", Password: "changeme", Role: model.RoleEmployee,
	})
	require.NoError(t, err)
	assert.True(t, created.Active)

	id := uuid.MustParse(created.ID)
	require.NoError(t, svc.DeactivateEmployee(context.Background(), id))

	active, err := svc.ListEmployees(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.ListEmployees(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.False(t, all[0].Active)
}
