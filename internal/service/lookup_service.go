package service

import (
	"context"
	"fmt"
	"strings"

	"report-service/internal/model"
	"report-service/internal/repository"
)

// Messages shown on the public status page.
const (
	MsgTicketRequired = "Masukkan nomor tiket terlebih dahulu."
	MsgTicketNotFound = "Nomor tiket tidak ditemukan. Pastikan nomor tiket benar."
	MsgLookupFailed   = "Terjadi kesalahan saat mengambil data."
)

const receivedTitle = "Laporan Diterima"

type LookupService struct {
	reports *repository.ReportRepository
}

func NewLookupService(reports *repository.ReportRepository) *LookupService {
	return &LookupService{reports: reports}
}

// Lookup resolves a ticket number into the public status view. Reporter
// identity never leaves this method.
func (s *LookupService) Lookup(ctx context.Context, ticket string) (*model.StatusView, error) {
	ticket = strings.TrimSpace(ticket)
	if ticket == "" {
		return nil, invalid("ticket", MsgTicketRequired)
	}

	report, err := s.reports.GetByTicket(ctx, ticket)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", ticket, err)
	}
	if report == nil {
		return nil, ErrNotFound
	}

	followUps, err := s.reports.ListFollowUps(ctx, report.ID)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", ticket, err)
	}

	return &model.StatusView{
		TicketNumber:      report.TicketNumber,
		Status:            report.Status,
		StatusLabel:       report.Status.Label(),
		Priority:          report.Priority,
		SubmittedAt:       report.CreatedAt,
		LastUpdate:        report.UpdatedAt,
		ViolenceType:      report.ViolenceType,
		ViolenceTypeLabel: report.ViolenceType.Label(),
		IncidentDate:      report.IncidentDate,
		IncidentTime:      report.IncidentTime,
		Location:          report.Location,
		Description:       report.Description,
		Impact:            report.Impact,
		IsAnonymous:       report.IsAnonymous,
		Victim: model.VictimBrief{
			Name:   report.VictimName,
			Age:    report.VictimAge,
			Gender: report.VictimGender,
		},
		Perpetrator: model.PerpetratorBrief{
			Name:         report.PerpetratorName,
			Relationship: report.PerpetratorRelationship,
		},
		Timeline: BuildTimeline(*report, followUps),
	}, nil
}

// BuildTimeline projects the follow-up history. Rows written before the
// history existed only carry the notes column, which becomes a single entry.
func BuildTimeline(report model.Report, followUps []model.FollowUp) []model.TimelineEntry {
	if len(followUps) == 0 {
		if report.Notes != nil && strings.TrimSpace(*report.Notes) != "" {
			updated := report.UpdatedAt
			return []model.TimelineEntry{{
				Title:     report.Status.Label(),
				Status:    report.Status,
				Message:   *report.Notes,
				CreatedAt: &updated,
			}}
		}
		created := report.CreatedAt
		return []model.TimelineEntry{{
			Title:     receivedTitle,
			Status:    model.ReportStatusNew,
			Message:   submissionMessage,
			CreatedAt: &created,
		}}
	}

	timeline := make([]model.TimelineEntry, 0, len(followUps))
	for i, entry := range followUps {
		title := entry.NewStatus.Label()
		if i == 0 && entry.OldStatus == nil && entry.NewStatus == model.ReportStatusNew {
			title = receivedTitle
		}
		createdAt := entry.CreatedAt
		timeline = append(timeline, model.TimelineEntry{
			Title:     title,
			Status:    entry.NewStatus,
			Message:   entry.Message,
			CreatedAt: &createdAt,
		})
	}
	return timeline
}
