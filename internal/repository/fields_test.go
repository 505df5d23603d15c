package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"report-service/internal/model"
)

func TestReportFromRecord_Aliases(t *testing.T) {
	id := uuid.New()
	created := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)

	report := ReportFromRecord(Record{
		"uuid":            id.String(),
		"ticket_no":       "QMR-12345678",
		"jenis_kekerasan": "Kekerasan Fisik",
		"lokasi":          "Asrama Putra",
		"victimName":      "Budi",
		"nama_pelapor":    "Siti",
		"state":           "menunggu",
		"tanggal":         created,
		"victim_age":      int64(14),
		"is_anonymous":    int64(0),
		"incident_date":   time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		"incident_time":   "19:45:00",
		"prioritas":       "darurat",
	})

	assert.Equal(t, id, report.ID)
	assert.Equal(t, "QMR-12345678", report.TicketNumber)
	assert.Equal(t, model.ViolenceTypePhysical, report.ViolenceType)
	assert.Equal(t, "Asrama Putra", report.Location)
	require.NotNil(t, report.VictimName)
	assert.Equal(t, "Budi", *report.VictimName)
	require.NotNil(t, report.ReporterName)
	assert.Equal(t, "Siti", *report.ReporterName)
	assert.Equal(t, model.ReportStatusPending, report.Status)
	assert.Equal(t, created, report.CreatedAt)
	assert.Equal(t, created, report.UpdatedAt)
	require.NotNil(t, report.VictimAge)
	assert.Equal(t, 14, *report.VictimAge)
	require.NotNil(t, report.IncidentDate)
	assert.Equal(t, "2024-05-01", *report.IncidentDate)
	require.NotNil(t, report.IncidentTime)
	assert.Equal(t, "19:45", *report.IncidentTime)
	require.NotNil(t, report.Priority)
	assert.Equal(t, model.PriorityEmergency, *report.Priority)
}

func TestReportFromRecord_FirstNonEmptyWins(t *testing.T) {
	report := ReportFromRecord(Record{
		"victim_name": "  ",
		"victimName":  nil,
		"nama_korban": "Aisyah",
		"name":        "ignored",
		"status":      "",
		"violence":    "kekerasan-seksual",
		"category":    "bullying",
	})

	require.NotNil(t, report.VictimName)
	assert.Equal(t, "Aisyah", *report.VictimName)
	assert.Equal(t, model.ReportStatusNew, report.Status)
	assert.Equal(t, model.ViolenceTypeSexual, report.ViolenceType)
}

func TestReportFromRecord_AnonymousHidesReporter(t *testing.T) {
	report := ReportFromRecord(Record{
		"is_anonymous":   true,
		"reporter_name":  "leaked",
		"reporter_email": "leaked@example.com",
	})

	assert.True(t, report.IsAnonymous)
	assert.Nil(t, report.ReporterName)
	assert.Nil(t, report.ReporterEmail)
}

func TestReportFromRecord_StatusNormalization(t *testing.T) {
	tests := []struct {
		raw  interface{}
		want model.ReportStatus
	}{
		{"baru", model.ReportStatusNew},
		{"diproses", model.ReportStatusInProgress},
		{"Under Review", model.ReportStatusInProgress},
		{"menunggu", model.ReportStatusPending},
		{"selesai", model.ReportStatusDone},
		{"resolved", model.ReportStatusDone},
		{"ditutup", model.ReportStatusClosed},
		{[]byte("closed"), model.ReportStatusClosed},
		{"Archived", model.ReportStatus("archived")},
	}

	for _, tt := range tests {
		report := ReportFromRecord(Record{"status": tt.raw})
		assert.Equal(t, tt.want, report.Status, "raw %v", tt.raw)
	}
}
