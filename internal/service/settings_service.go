package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"

	"report-service/internal/model"
	"report-service/internal/repository"
	"report-service/internal/sanitize"
)

const (
	minSessionTimeout = 5
	maxSessionTimeout = 1440
)

type SettingsService struct {
	settings  *repository.SettingsRepository
	sanitizer *sanitize.Sanitizer
	validate  *validator.Validate
}

func NewSettingsService(settings *repository.SettingsRepository, sanitizer *sanitize.Sanitizer) *SettingsService {
	return &SettingsService{
		settings:  settings,
		sanitizer: sanitizer,
		validate:  validator.New(),
	}
}

func (s *SettingsService) Get(ctx context.Context, principal model.Principal) (model.Settings, error) {
	if !principal.CanTriage() {
		return model.Settings{}, ErrPermissionDenied
	}
	return s.settings.Get(ctx)
}

type UpdateSettingsInput struct {
	WhatsappNotifications bool
	EmailNotifications    bool
	SMSNotifications      bool
	EmergencyPhone        string
	AdminEmail            string
	WhatsappNumber        string
	NewReportTemplate     string
	StatusUpdateTemplate  string
	AutoLogout            bool
	SessionTimeoutMinutes int
	RequirePasswordChange bool
}

func (s *SettingsService) Update(ctx context.Context, principal model.Principal, input UpdateSettingsInput) (model.Settings, error) {
	if !principal.IsAdmin() {
		return model.Settings{}, ErrPermissionDenied
	}

	adminEmail := strings.TrimSpace(input.AdminEmail)
	if err := s.validate.Var(adminEmail, "required,email"); err != nil {
		return model.Settings{}, invalid("admin_email", "alamat email tidak valid")
	}
	if input.SessionTimeoutMinutes < minSessionTimeout || input.SessionTimeoutMinutes > maxSessionTimeout {
		return model.Settings{}, invalid("session_timeout_minutes", "batas waktu sesi harus 5 sampai 1440 menit")
	}

	current, err := s.settings.Get(ctx)
	if err != nil {
		return model.Settings{}, err
	}
	templates := current.Templates.Data()
	if text := s.sanitizer.Text(input.NewReportTemplate); text != "" {
		templates.NewReport = text
	}
	if text := s.sanitizer.Text(input.StatusUpdateTemplate); text != "" {
		templates.StatusUpdate = text
	}

	current.WhatsappNotifications = input.WhatsappNotifications
	current.EmailNotifications = input.EmailNotifications
	current.SMSNotifications = input.SMSNotifications
	current.EmergencyPhone = s.sanitizer.Text(input.EmergencyPhone)
	current.AdminEmail = adminEmail
	current.WhatsappNumber = s.sanitizer.Text(input.WhatsappNumber)
	current.Templates = datatypes.NewJSONType(templates)
	current.AutoLogout = input.AutoLogout
	current.SessionTimeoutMinutes = input.SessionTimeoutMinutes
	current.RequirePasswordChange = input.RequirePasswordChange

	return s.settings.Save(ctx, current)
}

// Contact returns the public help lines shown next to the status page.
func (s *SettingsService) Contact(ctx context.Context) (model.ContactInfo, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return model.ContactInfo{}, err
	}
	return model.ContactInfo{
		EmergencyPhone: settings.EmergencyPhone,
		WhatsappNumber: settings.WhatsappNumber,
		AdminEmail:     settings.AdminEmail,
	}, nil
}
