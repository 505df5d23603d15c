package service

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"report-service/internal/model"
	"report-service/internal/notify"
	"report-service/internal/realtime"
	"report-service/internal/repository"
	"report-service/internal/sanitize"
	"report-service/internal/stats"
)

type TriageService struct {
	reports   *repository.ReportRepository
	settings  *repository.SettingsRepository
	broker    realtime.Broker
	notifier  notify.Notifier
	sanitizer *sanitize.Sanitizer
	loc       *time.Location
	now       func() time.Time
	log       zerolog.Logger
}

func NewTriageService(
	reports *repository.ReportRepository,
	settings *repository.SettingsRepository,
	broker realtime.Broker,
	notifier notify.Notifier,
	sanitizer *sanitize.Sanitizer,
	loc *time.Location,
	log zerolog.Logger,
) *TriageService {
	if loc == nil {
		loc = time.Local
	}
	return &TriageService{
		reports:   reports,
		settings:  settings,
		broker:    broker,
		notifier:  notifier,
		sanitizer: sanitizer,
		loc:       loc,
		now:       time.Now,
		log:       log,
	}
}

func (s *TriageService) WithClock(now func() time.Time) *TriageService {
	s.now = now
	return s
}

func (s *TriageService) List(ctx context.Context, principal model.Principal, filter Filter) (*model.ReportListResult, error) {
	if !principal.CanTriage() {
		return nil, ErrPermissionDenied
	}

	reports, err := s.reports.List(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[model.ReportStatus]int, len(model.ReportStatuses))
	for _, status := range model.ReportStatuses {
		counts[status] = 0
	}
	for _, r := range reports {
		counts[r.Status]++
	}

	items := ApplyFilter(reports, filter)
	return &model.ReportListResult{
		Items:        items,
		Total:        len(reports),
		Matched:      len(items),
		StatusCounts: counts,
	}, nil
}

func (s *TriageService) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.ReportDetails, error) {
	if !principal.CanTriage() {
		return nil, ErrPermissionDenied
	}

	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, ErrNotFound
	}

	followUps, err := s.reports.ListFollowUps(ctx, report.ID)
	if err != nil {
		return nil, err
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	latest := ""
	if report.Notes != nil {
		latest = *report.Notes
	}

	return &model.ReportDetails{
		Report:           *report,
		StatusLabel:      report.Status.Label(),
		FollowUps:        followUps,
		SuggestedMessage: notify.Render(settings.Templates.Data().StatusUpdate, *report, latest),
	}, nil
}

// UpdateStatus applies a triage decision and returns the row as stored, which
// is what callers must display.
func (s *TriageService) UpdateStatus(ctx context.Context, principal model.Principal, id uuid.UUID, status model.ReportStatus, notes string) (*model.Report, error) {
	if !principal.CanTriage() {
		return nil, ErrPermissionDenied
	}
	if !status.Valid() {
		return nil, invalid("status", "status tidak dikenal")
	}

	current, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrNotFound
	}
	if !current.Status.CanTransitionTo(status) {
		return nil, ErrInvalidStatus
	}

	message := s.sanitizer.Text(notes)
	if current.Status == status && message == "" {
		return nil, invalid("notes", "catatan tindak lanjut wajib diisi bila status tidak berubah")
	}

	var notesValue *string
	if message != "" {
		notesValue = &message
	}
	oldStatus := current.Status
	authorID := principal.AdminID

	updated, err := s.reports.UpdateStatus(ctx, id, current.Status, status, notesValue, &model.FollowUp{
		AuthorID:   &authorID,
		AuthorName: principal.Name,
		OldStatus:  &oldStatus,
		Message:    message,
	})
	if err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, ErrConflict
		}
		return nil, err
	}

	publish(ctx, s.broker, s.log, realtime.EventReportUpdated, *updated)
	s.notifyReporter(ctx, *updated, message)

	return updated, nil
}

func (s *TriageService) notifyReporter(ctx context.Context, report model.Report, message string) {
	if report.IsAnonymous || report.ReporterEmail == nil || *report.ReporterEmail == "" {
		return
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		s.log.Warn().Err(err).Str("ticket", report.TicketNumber).Msg("skipping status notification")
		return
	}
	if !settings.EmailNotifications {
		return
	}
	s.notifier.StatusUpdated(ctx, settings, report, message)
}

func (s *TriageService) Assign(ctx context.Context, principal model.Principal, id uuid.UUID, priority *model.Priority, assignedTo *string) (*model.Report, error) {
	if !principal.CanTriage() {
		return nil, ErrPermissionDenied
	}

	updated, err := s.reports.UpdateAssignment(ctx, id, priority, s.sanitizer.Ptr(assignedTo))
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}

	publish(ctx, s.broker, s.log, realtime.EventReportUpdated, *updated)
	return updated, nil
}

// Dashboard refetches every report and aggregates it. Nothing is cached.
func (s *TriageService) Dashboard(ctx context.Context, principal model.Principal) (stats.Dashboard, error) {
	if !principal.CanTriage() {
		return stats.Dashboard{}, ErrPermissionDenied
	}

	reports, err := s.reports.List(ctx)
	if err != nil {
		return stats.Dashboard{}, err
	}
	return stats.Compute(reports, s.now(), s.loc), nil
}

var exportHeader = []string{
	"ticket_number",
	"created_at",
	"status",
	"status_label",
	"violence_type",
	"violence_type_label",
	"incident_date",
	"location",
	"victim_name",
	"is_anonymous",
	"reporter_name",
	"priority",
	"assigned_to",
	"updated_at",
}

// Export writes the filtered listing as CSV.
func (s *TriageService) Export(ctx context.Context, principal model.Principal, filter Filter, w io.Writer) error {
	result, err := s.List(ctx, principal, filter)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return err
	}
	for _, r := range result.Items {
		priority := ""
		if r.Priority != nil {
			priority = string(*r.Priority)
		}
		row := []string{
			r.TicketNumber,
			r.CreatedAt.In(s.loc).Format(time.RFC3339),
			string(r.Status),
			r.Status.Label(),
			string(r.ViolenceType),
			r.ViolenceType.Label(),
			deref(r.IncidentDate),
			r.Location,
			deref(r.VictimName),
			strconv.FormatBool(r.IsAnonymous),
			deref(r.ReporterName),
			priority,
			deref(r.AssignedTo),
			r.UpdatedAt.In(s.loc).Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// SnapshotAs binds Dashboard to a fixed principal for the realtime hub.
func (s *TriageService) SnapshotAs(principal model.Principal) realtime.SnapshotFunc {
	return func(ctx context.Context) (stats.Dashboard, error) {
		return s.Dashboard(ctx, principal)
	}
}
