package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportStatus string

const (
	ReportStatusNew        ReportStatus = "new"
	ReportStatusInProgress ReportStatus = "in_progress"
	ReportStatusPending    ReportStatus = "pending"
	ReportStatusDone       ReportStatus = "done"
	ReportStatusClosed     ReportStatus = "closed"
)

// ReportStatuses lists every canonical status in display order.
var ReportStatuses = []ReportStatus{
	ReportStatusNew,
	ReportStatusInProgress,
	ReportStatusPending,
	ReportStatusDone,
	ReportStatusClosed,
}

var reportStatusAliases = map[string]ReportStatus{
	"new":           ReportStatusNew,
	"baru":          ReportStatusNew,
	"submitted":     ReportStatusNew,
	"in_progress":   ReportStatusInProgress,
	"diproses":      ReportStatusInProgress,
	"under_review":  ReportStatusInProgress,
	"investigating": ReportStatusInProgress,
	"pending":       ReportStatusPending,
	"menunggu":      ReportStatusPending,
	"done":          ReportStatusDone,
	"selesai":       ReportStatusDone,
	"resolved":      ReportStatusDone,
	"closed":        ReportStatusClosed,
	"ditutup":       ReportStatusClosed,
}

var reportStatusLabels = map[ReportStatus]string{
	ReportStatusNew:        "Baru",
	ReportStatusInProgress: "Sedang Diproses",
	ReportStatusPending:    "Menunggu Tindak Lanjut",
	ReportStatusDone:       "Selesai",
	ReportStatusClosed:     "Ditutup",
}

var reportTransitions = map[ReportStatus][]ReportStatus{
	ReportStatusNew:        {ReportStatusInProgress, ReportStatusPending, ReportStatusDone, ReportStatusClosed},
	ReportStatusInProgress: {ReportStatusPending, ReportStatusDone, ReportStatusClosed},
	ReportStatusPending:    {ReportStatusInProgress, ReportStatusDone, ReportStatusClosed},
	ReportStatusDone:       {ReportStatusInProgress, ReportStatusClosed},
	ReportStatusClosed:     {},
}

// ParseReportStatus accepts canonical codes and the legacy values written by
// older front-ends ("baru", "diproses", "menunggu", ...).
func ParseReportStatus(raw string) (ReportStatus, bool) {
	status, ok := reportStatusAliases[normalizeKey(raw)]
	return status, ok
}

func (s ReportStatus) Valid() bool {
	_, ok := reportStatusLabels[s]
	return ok
}

func (s ReportStatus) Label() string {
	if label, ok := reportStatusLabels[s]; ok {
		return label
	}
	return "Tidak Diketahui"
}

// CanTransitionTo reports whether a triage update may move a report from s to
// target. Keeping the same status is always allowed so that a follow-up note
// can be recorded without a transition.
func (s ReportStatus) CanTransitionTo(target ReportStatus) bool {
	if !target.Valid() {
		return false
	}
	if s == target {
		return true
	}
	for _, next := range reportTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

type ViolenceType string

const (
	ViolenceTypePhysical       ViolenceType = "physical"
	ViolenceTypeVerbal         ViolenceType = "verbal"
	ViolenceTypeSexual         ViolenceType = "sexual"
	ViolenceTypeBullying       ViolenceType = "bullying"
	ViolenceTypeDiscrimination ViolenceType = "discrimination"
	ViolenceTypeAbuseOfPower   ViolenceType = "abuse_of_power"
	ViolenceTypeNeglect        ViolenceType = "neglect"
	ViolenceTypeOther          ViolenceType = "other"
)

var ViolenceTypes = []ViolenceType{
	ViolenceTypePhysical,
	ViolenceTypeVerbal,
	ViolenceTypeSexual,
	ViolenceTypeBullying,
	ViolenceTypeDiscrimination,
	ViolenceTypeAbuseOfPower,
	ViolenceTypeNeglect,
	ViolenceTypeOther,
}

var violenceTypeLabels = map[ViolenceType]string{
	ViolenceTypePhysical:       "Kekerasan Fisik",
	ViolenceTypeVerbal:         "Kekerasan Verbal/Psikologis",
	ViolenceTypeSexual:         "Kekerasan Seksual",
	ViolenceTypeBullying:       "Bullying/Perundungan",
	ViolenceTypeDiscrimination: "Diskriminasi",
	ViolenceTypeAbuseOfPower:   "Penyalahgunaan Kekuasaan",
	ViolenceTypeNeglect:        "Penelantaran",
	ViolenceTypeOther:          "Lainnya",
}

var violenceTypeAliases = map[string]ViolenceType{
	"kekerasan_fisik":          ViolenceTypePhysical,
	"kekerasan_verbal":         ViolenceTypeVerbal,
	"kekerasan_psikologis":     ViolenceTypeVerbal,
	"psychological":            ViolenceTypeVerbal,
	"kekerasan_seksual":        ViolenceTypeSexual,
	"perundungan":              ViolenceTypeBullying,
	"diskriminasi":             ViolenceTypeDiscrimination,
	"penyalahgunaan_kekuasaan": ViolenceTypeAbuseOfPower,
	"penelantaran":             ViolenceTypeNeglect,
	"lainnya":                  ViolenceTypeOther,
}

func init() {
	for _, vt := range ViolenceTypes {
		violenceTypeAliases[string(vt)] = vt
		violenceTypeAliases[normalizeKey(violenceTypeLabels[vt])] = vt
	}
}

// ParseViolenceType accepts canonical codes, the form slugs used by the
// submission page ("kekerasan-fisik") and the display labels used as filter
// values by the listing page ("Kekerasan Fisik").
func ParseViolenceType(raw string) (ViolenceType, bool) {
	vt, ok := violenceTypeAliases[normalizeKey(raw)]
	return vt, ok
}

func (v ViolenceType) Valid() bool {
	_, ok := violenceTypeLabels[v]
	return ok
}

func (v ViolenceType) Label() string {
	if label, ok := violenceTypeLabels[v]; ok {
		return label
	}
	if v == "" {
		return "-"
	}
	return string(v)
}

type Priority string

const (
	PriorityLow       Priority = "low"
	PriorityNormal    Priority = "normal"
	PriorityHigh      Priority = "high"
	PriorityEmergency Priority = "emergency"
)

var priorityAliases = map[string]Priority{
	"low":       PriorityLow,
	"rendah":    PriorityLow,
	"normal":    PriorityNormal,
	"sedang":    PriorityNormal,
	"medium":    PriorityNormal,
	"high":      PriorityHigh,
	"tinggi":    PriorityHigh,
	"emergency": PriorityEmergency,
	"darurat":   PriorityEmergency,
	"urgent":    PriorityEmergency,
}

func ParsePriority(raw string) (Priority, bool) {
	p, ok := priorityAliases[normalizeKey(raw)]
	return p, ok
}

func (p Priority) IsHigh() bool {
	return p == PriorityHigh || p == PriorityEmergency
}

type Report struct {
	ID                      uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	TicketNumber            string       `gorm:"type:varchar(16);not null;uniqueIndex" json:"ticket_number"`
	ViolenceType            ViolenceType `gorm:"type:varchar(32);not null" json:"violence_type"`
	IncidentDate            *string      `gorm:"type:date" json:"incident_date"`
	IncidentTime            *string      `gorm:"type:varchar(8)" json:"incident_time"`
	Location                string       `gorm:"type:text;not null" json:"location"`
	Description             string       `gorm:"type:text;not null" json:"description"`
	Impact                  *string      `gorm:"type:text" json:"impact"`
	VictimName              *string      `gorm:"type:varchar(255)" json:"victim_name"`
	VictimAge               *int         `json:"victim_age"`
	VictimGender            *string      `gorm:"type:varchar(32)" json:"victim_gender"`
	VictimPhone             *string      `gorm:"type:varchar(32)" json:"victim_phone"`
	VictimEmail             *string      `gorm:"type:varchar(255)" json:"victim_email"`
	PerpetratorName         *string      `gorm:"type:varchar(255)" json:"perpetrator_name"`
	PerpetratorRelationship *string      `gorm:"type:varchar(64)" json:"perpetrator_relationship"`
	WitnessName             *string      `gorm:"type:varchar(255)" json:"witness_name"`
	WitnessContact          *string      `gorm:"type:varchar(255)" json:"witness_contact"`
	IsAnonymous             bool         `gorm:"not null;default:false" json:"is_anonymous"`
	ReporterName            *string      `gorm:"type:varchar(255)" json:"reporter_name"`
	ReporterPhone           *string      `gorm:"type:varchar(32)" json:"reporter_phone"`
	ReporterEmail           *string      `gorm:"type:varchar(255)" json:"reporter_email"`
	ReporterRelationship    *string      `gorm:"type:varchar(64)" json:"reporter_relationship"`
	Status                  ReportStatus `gorm:"type:varchar(16);not null;default:'new';index" json:"status"`
	Priority                *Priority    `gorm:"type:varchar(16)" json:"priority"`
	AssignedTo              *string      `gorm:"type:varchar(255)" json:"assigned_to"`
	Notes                   *string      `gorm:"type:text" json:"notes"`
	CreatedAt               time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt               time.Time    `json:"updated_at"`
}

func (Report) TableName() string {
	return "reports"
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ClearReporterIdentity drops every reporter_* field. Anonymous reports must
// never persist who filed them.
func (r *Report) ClearReporterIdentity() {
	r.ReporterName = nil
	r.ReporterPhone = nil
	r.ReporterEmail = nil
	r.ReporterRelationship = nil
}

func normalizeKey(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	return strings.NewReplacer("-", "_", " ", "_", "/", "_").Replace(key)
}
