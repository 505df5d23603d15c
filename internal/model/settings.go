package model

import (
	"time"

	"gorm.io/datatypes"
)

const SettingsRowID = 1

type MessageTemplates struct {
	NewReport    string `json:"new_report"`
	StatusUpdate string `json:"status_update"`
}

type Settings struct {
	ID                    uint                                 `gorm:"primaryKey" json:"-"`
	WhatsappNotifications bool                                 `json:"whatsapp_notifications"`
	EmailNotifications    bool                                 `json:"email_notifications"`
	SMSNotifications      bool                                 `gorm:"column:sms_notifications" json:"sms_notifications"`
	EmergencyPhone        string                               `gorm:"type:varchar(32)" json:"emergency_phone"`
	AdminEmail            string                               `gorm:"type:varchar(255)" json:"admin_email"`
	WhatsappNumber        string                               `gorm:"type:varchar(32)" json:"whatsapp_number"`
	Templates             datatypes.JSONType[MessageTemplates] `json:"templates"`
	AutoLogout            bool                                 `json:"auto_logout"`
	SessionTimeoutMinutes int                                  `json:"session_timeout_minutes"`
	RequirePasswordChange bool                                 `json:"require_password_change"`
	UpdatedAt             time.Time                            `json:"updated_at"`
}

func (Settings) TableName() string {
	return "settings"
}

// DefaultSettings mirrors the values the admin settings page ships with.
func DefaultSettings() Settings {
	return Settings{
		ID:                    SettingsRowID,
		WhatsappNotifications: true,
		EmailNotifications:    true,
		SMSNotifications:      false,
		EmergencyPhone:        "0812-3456-7890",
		AdminEmail:            "admin@qomarun.com",
		WhatsappNumber:        "0812-3456-7890",
		Templates: datatypes.NewJSONType(MessageTemplates{
			NewReport:    "Laporan baru telah diterima dengan ID tiket {ticket_id}. Tim akan segera menindaklanjuti.",
			StatusUpdate: "Pembaruan untuk tiket {ticket_id}. Status: {status}. {message}",
		}),
		AutoLogout:            true,
		SessionTimeoutMinutes: 30,
		RequirePasswordChange: false,
	}
}

func (s Settings) SessionTimeout() time.Duration {
	return time.Duration(s.SessionTimeoutMinutes) * time.Minute
}
