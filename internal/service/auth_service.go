package service

import (
	"context"
	"time"

	"tradenet/internal/apperr"
	"tradenet/internal/config"
	"tradenet/internal/dto"
	"tradenet/internal/model"
	"tradenet/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService issues tokens and manages employee accounts. Only active
// employees can log in or refresh; deactivation revokes access at the next
// middleware check.
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	CreateEmployee(ctx context.Context, req dto.CreateEmployeeRequest) (*dto.EmployeeResponse, error)
	ListEmployees(ctx context.Context, includeInactive bool) ([]dto.EmployeeResponse, error)
	UpdateEmployee(ctx context.Context, id uuid.UUID, req dto.UpdateEmployeeRequest) (*dto.EmployeeResponse, error)
	DeactivateEmployee(ctx context.Context, id uuid.UUID) error
	ReactivateEmployee(ctx context.Context, id uuid.UUID) error
}

type authService struct {
	repo repository.EmployeeRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.EmployeeRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	employee, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperr.Authorization("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(employee.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperr.Authorization("invalid credentials")
	}

	return s.tokenPair(employee)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.Authorization("refresh token invalid or expired")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperr.Authorization("malformed token")
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, apperr.Authorization("malformed token")
	}
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, apperr.Authorization("malformed token")
	}

	employee, err := s.repo.FindByID(ctx, uid)
	if err != nil || !employee.Active {
		return nil, apperr.Authorization("employee not found or inactive")
	}

	return s.tokenPair(employee)
}

func (s *authService) CreateEmployee(ctx context.Context, req dto.CreateEmployeeRequest) (*dto.EmployeeResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, err
	}
	employee := &model.Employee{
		Username:     req.Username,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		Active:       true,
	}
	if err := s.repo.Create(ctx, employee); err != nil {
		return nil, err
	}
	resp := employeeResponse(employee)
	return &resp, nil
}

func (s *authService) ListEmployees(ctx context.Context, includeInactive bool) ([]dto.EmployeeResponse, error) {
	var employees []model.Employee
	var err error
	if includeInactive {
		employees, err = s.repo.ListAll(ctx)
	} else {
		employees, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, err
	}
	resp := make([]dto.EmployeeResponse, len(employees))
	for i := range employees {
		resp[i] = employeeResponse(&employees[i])
	}
	return resp, nil
}

func (s *authService) UpdateEmployee(ctx context.Context, id uuid.UUID, req dto.UpdateEmployeeRequest) (*dto.EmployeeResponse, error) {
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("employee")
	}
	if req.Name != "" {
		employee.Name = req.Name
	}
	if req.Email != nil {
		employee.Email = req.Email
	}
	if req.Role != "" {
		employee.Role = req.Role
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
		if err != nil {
			return nil, err
		}
		employee.PasswordHash = string(hash)
	}
	if err := s.repo.Update(ctx, employee); err != nil {
		return nil, err
	}
	resp := employeeResponse(employee)
	return &resp, nil
}

func (s *authService) DeactivateEmployee(ctx context.Context, id uuid.UUID) error {
	return s.repo.Deactivate(ctx, id)
}

func (s *authService) ReactivateEmployee(ctx context.Context, id uuid.UUID) error {
	return s.repo.Reactivate(ctx, id)
}

func (s *authService) tokenPair(employee *model.Employee) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(employee, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(employee, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         employeeResponse(employee),
	}, nil
}

func (s *authService) generateToken(employee *model.Employee, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  employee.ID.String(),
		"username": employee.Username,
		"role":     employee.Role,
		"active":   employee.Active,
		"exp":      time.Now().Add(duration).Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func employeeResponse(e *model.Employee) dto.EmployeeResponse {
	return dto.EmployeeResponse{
		ID:       e.ID.String(),
		Username: e.Username,
		Name:     e.Name,
		Email:    e.Email,
		Role:     e.Role,
		Active:   e.Active,
	}
}
