package model

import (
	"time"

	"github.com/google/uuid"
)

type SubmissionReceipt struct {
	TicketNumber string       `json:"ticket_number"`
	Status       ReportStatus `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
}

type TimelineEntry struct {
	Title     string       `json:"title"`
	Status    ReportStatus `json:"status,omitempty"`
	Message   string       `json:"description"`
	CreatedAt *time.Time   `json:"date"`
}

type VictimBrief struct {
	Name   *string `json:"name"`
	Age    *int    `json:"age"`
	Gender *string `json:"gender"`
}

type PerpetratorBrief struct {
	Name         *string `json:"name"`
	Relationship *string `json:"relationship"`
}

// StatusView is what an unauthenticated ticket holder may see. Reporter
// identity and victim contact details are deliberately absent.
type StatusView struct {
	TicketNumber      string           `json:"ticket_number"`
	Status            ReportStatus     `json:"status"`
	StatusLabel       string           `json:"status_label"`
	Priority          *Priority        `json:"priority"`
	SubmittedAt       time.Time        `json:"submitted_at"`
	LastUpdate        time.Time        `json:"last_update"`
	ViolenceType      ViolenceType     `json:"violence_type"`
	ViolenceTypeLabel string           `json:"violence_type_label"`
	IncidentDate      *string          `json:"incident_date"`
	IncidentTime      *string          `json:"incident_time"`
	Location          string           `json:"location"`
	Description       string           `json:"description"`
	Impact            *string          `json:"impact"`
	IsAnonymous       bool             `json:"is_anonymous"`
	Victim            VictimBrief      `json:"victim"`
	Perpetrator       PerpetratorBrief `json:"perpetrator"`
	Timeline          []TimelineEntry  `json:"timeline"`
}

type ReportDetails struct {
	Report           Report     `json:"report"`
	StatusLabel      string     `json:"status_label"`
	FollowUps        []FollowUp `json:"follow_ups"`
	SuggestedMessage string     `json:"suggested_message"`
}

type ReportListResult struct {
	Items        []Report             `json:"items"`
	Total        int                  `json:"total"`
	Matched      int                  `json:"matched"`
	StatusCounts map[ReportStatus]int `json:"status_counts"`
}

type ContactInfo struct {
	EmergencyPhone string `json:"emergency_phone"`
	WhatsappNumber string `json:"whatsapp_number"`
	AdminEmail     string `json:"admin_email"`
}

type LoginResult struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	Admin       Principal `json:"admin"`

	// RequirePasswordChange tells the dashboard to send the admin to the
	// password form before anything else.
	RequirePasswordChange bool `json:"require_password_change"`
}

type AdminBrief struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  AdminRole `json:"role"`
}
