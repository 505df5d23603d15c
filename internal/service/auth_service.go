package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"report-service/internal/auth"
	"report-service/internal/model"
	"report-service/internal/repository"
)

const minPasswordLength = 8

type AuthService struct {
	admins     *repository.AdminRepository
	settings   *repository.SettingsRepository
	tokens     *auth.Parser
	defaultTTL time.Duration
	validate   *validator.Validate
}

func NewAuthService(
	admins *repository.AdminRepository,
	settings *repository.SettingsRepository,
	tokens *auth.Parser,
	defaultTTL time.Duration,
) *AuthService {
	return &AuthService{
		admins:     admins,
		settings:   settings,
		tokens:     tokens,
		defaultTTL: defaultTTL,
		validate:   validator.New(),
	}
}

// Login checks credentials and issues an access token. Its lifetime follows
// the session timeout when auto logout is enabled.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.LoginResult, error) {
	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !admin.IsActive || !auth.CheckPassword(admin.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	ttl := s.defaultTTL
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if settings.AutoLogout && settings.SessionTimeout() > 0 {
		ttl = settings.SessionTimeout()
	}

	token, expiresAt, err := s.tokens.Issue(*admin, ttl)
	if err != nil {
		return nil, err
	}

	return &model.LoginResult{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		Admin: model.Principal{
			AdminID: admin.ID,
			Email:   admin.Email,
			Name:    admin.Name,
			Role:    admin.Role,
		},
		RequirePasswordChange: settings.RequirePasswordChange,
	}, nil
}

type CreateAdminInput struct {
	Email    string
	Name     string
	Role     model.AdminRole
	Password string
}

func (s *AuthService) CreateAdmin(ctx context.Context, input CreateAdminInput) (*model.Admin, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, invalid("email", "alamat email tidak valid")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalid("name", "nama wajib diisi")
	}
	role := model.AdminRole(strings.ToUpper(strings.TrimSpace(string(input.Role))))
	if !role.Valid() {
		return nil, invalid("role", "peran harus ADMIN atau COUNSELOR")
	}
	if len(input.Password) < minPasswordLength {
		return nil, invalid("password", "kata sandi minimal 8 karakter")
	}

	if _, err := s.admins.GetByEmail(ctx, email); err == nil {
		return nil, ErrConflict
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	admin := &model.Admin{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}
