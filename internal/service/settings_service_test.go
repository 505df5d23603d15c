package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"report-service/internal/model"
	"report-service/internal/repository"
	"report-service/internal/sanitize"
)

func validSettingsInput() UpdateSettingsInput {
	return UpdateSettingsInput{
		EmailNotifications:    true,
		EmergencyPhone:        "0811-0000-1111",
		AdminEmail:            "bk@qomarun.com",
		WhatsappNumber:        "0811-2222-3333",
		StatusUpdateTemplate:  "Tiket {ticket_id}: {status}",
		AutoLogout:            true,
		SessionTimeoutMinutes: 60,
	}
}

func TestSettingsService(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSettingsService(repository.NewSettingsRepository(db), sanitize.New())
	ctx := context.Background()

	current, err := svc.Get(ctx, counselor())
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings().AdminEmail, current.AdminEmail)

	_, err = svc.Get(ctx, model.Principal{})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.Update(ctx, counselor(), validSettingsInput())
	assert.ErrorIs(t, err, ErrPermissionDenied)

	saved, err := svc.Update(ctx, administrator(), validSettingsInput())
	require.NoError(t, err)
	assert.Equal(t, "bk@qomarun.com", saved.AdminEmail)
	assert.Equal(t, 60, saved.SessionTimeoutMinutes)
	assert.Equal(t, "Tiket {ticket_id}: {status}", saved.Templates.Data().StatusUpdate)
	assert.Equal(t, model.DefaultSettings().Templates.Data().NewReport, saved.Templates.Data().NewReport)
	assert.False(t, saved.WhatsappNotifications)

	contact, err := svc.Contact(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ContactInfo{
		EmergencyPhone: "0811-0000-1111",
		WhatsappNumber: "0811-2222-3333",
		AdminEmail:     "bk@qomarun.com",
	}, contact)
}

func TestSettingsService_Validation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSettingsService(repository.NewSettingsRepository(db), sanitize.New())

	input := validSettingsInput()
	input.SessionTimeoutMinutes = 2
	_, err := svc.Update(context.Background(), administrator(), input)
	assert.ErrorIs(t, err, ErrInvalidInput)

	input = validSettingsInput()
	input.AdminEmail = "bukan email"
	_, err = svc.Update(context.Background(), administrator(), input)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "admin_email", vErr.Field)
}
