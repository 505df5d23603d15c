package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"report-service/internal/model"
	"report-service/internal/notify"
	"report-service/internal/realtime"
	"report-service/internal/repository"
	"report-service/internal/sanitize"
)

const (
	submissionAuthor  = "Sistem"
	submissionMessage = "Laporan diterima"
	maxVictimAge      = 120
)

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

type SubmissionService struct {
	reports   *repository.ReportRepository
	settings  *repository.SettingsRepository
	broker    realtime.Broker
	notifier  notify.Notifier
	sanitizer *sanitize.Sanitizer
	validate  *validator.Validate
	log       zerolog.Logger
}

func NewSubmissionService(
	reports *repository.ReportRepository,
	settings *repository.SettingsRepository,
	broker realtime.Broker,
	notifier notify.Notifier,
	sanitizer *sanitize.Sanitizer,
	log zerolog.Logger,
) *SubmissionService {
	return &SubmissionService{
		reports:   reports,
		settings:  settings,
		broker:    broker,
		notifier:  notifier,
		sanitizer: sanitizer,
		validate:  validator.New(),
		log:       log,
	}
}

type SubmissionInput struct {
	Consent                 bool
	ViolenceType            string
	IncidentDate            string
	IncidentTime            string
	Location                string
	Description             string
	Impact                  *string
	VictimName              string
	VictimAge               *int
	VictimGender            *string
	VictimPhone             *string
	VictimEmail             *string
	PerpetratorName         *string
	PerpetratorRelationship *string
	WitnessName             *string
	WitnessContact          *string
	IsAnonymous             bool
	ReporterName            *string
	ReporterPhone           *string
	ReporterEmail           *string
	ReporterRelationship    *string
}

// Submit validates and stores a new report. Nothing reaches the database
// unless consent was given and the mandatory fields are present.
func (s *SubmissionService) Submit(ctx context.Context, input SubmissionInput) (*model.SubmissionReceipt, error) {
	report, err := s.buildReport(input)
	if err != nil {
		return nil, err
	}

	created, err := s.reports.Insert(ctx, report, &model.FollowUp{
		AuthorName: submissionAuthor,
		Message:    submissionMessage,
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.broker, s.log, realtime.EventReportCreated, *created)

	settings, err := s.settings.Get(ctx)
	if err != nil {
		s.log.Warn().Err(err).Str("ticket", created.TicketNumber).Msg("skipping new report notification")
	} else if settings.EmailNotifications {
		s.notifier.ReportCreated(ctx, settings, *created)
	}

	return &model.SubmissionReceipt{
		TicketNumber: created.TicketNumber,
		Status:       created.Status,
		CreatedAt:    created.CreatedAt,
	}, nil
}

func (s *SubmissionService) buildReport(input SubmissionInput) (model.Report, error) {
	if !input.Consent {
		return model.Report{}, ErrConsentRequired
	}

	violenceType, ok := model.ParseViolenceType(input.ViolenceType)
	if !ok {
		return model.Report{}, invalid("violence_type", "jenis kekerasan tidak dikenal")
	}

	incidentDate := strings.TrimSpace(input.IncidentDate)
	if incidentDate == "" {
		return model.Report{}, invalid("incident_date", "tanggal kejadian wajib diisi")
	}
	if _, err := time.Parse("2006-01-02", incidentDate); err != nil {
		return model.Report{}, invalid("incident_date", "format tanggal harus YYYY-MM-DD")
	}

	var incidentTime *string
	if clock := strings.TrimSpace(input.IncidentTime); clock != "" {
		if !clockPattern.MatchString(clock) {
			return model.Report{}, invalid("incident_time", "format waktu harus HH:MM")
		}
		incidentTime = &clock
	}

	location := s.sanitizer.Text(input.Location)
	if location == "" {
		return model.Report{}, invalid("location", "lokasi wajib diisi")
	}
	description := s.sanitizer.Text(input.Description)
	if description == "" {
		return model.Report{}, invalid("description", "kronologi wajib diisi")
	}
	victimName := s.sanitizer.Text(input.VictimName)
	if victimName == "" {
		return model.Report{}, invalid("victim_name", "nama korban wajib diisi")
	}

	if input.VictimAge != nil && (*input.VictimAge < 0 || *input.VictimAge > maxVictimAge) {
		return model.Report{}, invalid("victim_age", "usia korban tidak valid")
	}

	victimEmail, err := s.email("victim_email", input.VictimEmail)
	if err != nil {
		return model.Report{}, err
	}
	var reporterEmail *string
	if !input.IsAnonymous {
		reporterEmail, err = s.email("reporter_email", input.ReporterEmail)
		if err != nil {
			return model.Report{}, err
		}
	}

	report := model.Report{
		ViolenceType:            violenceType,
		IncidentDate:            &incidentDate,
		IncidentTime:            incidentTime,
		Location:                location,
		Description:             description,
		Impact:                  s.sanitizer.Ptr(input.Impact),
		VictimName:              &victimName,
		VictimAge:               input.VictimAge,
		VictimGender:            s.sanitizer.Ptr(input.VictimGender),
		VictimPhone:             s.sanitizer.Ptr(input.VictimPhone),
		VictimEmail:             victimEmail,
		PerpetratorName:         s.sanitizer.Ptr(input.PerpetratorName),
		PerpetratorRelationship: s.sanitizer.Ptr(input.PerpetratorRelationship),
		WitnessName:             s.sanitizer.Ptr(input.WitnessName),
		WitnessContact:          s.sanitizer.Ptr(input.WitnessContact),
		IsAnonymous:             input.IsAnonymous,
		ReporterName:            s.sanitizer.Ptr(input.ReporterName),
		ReporterPhone:           s.sanitizer.Ptr(input.ReporterPhone),
		ReporterEmail:           reporterEmail,
		ReporterRelationship:    s.sanitizer.Ptr(input.ReporterRelationship),
	}
	if report.IsAnonymous {
		report.ClearReporterIdentity()
	}
	return report, nil
}

func (s *SubmissionService) email(field string, raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil, nil
	}
	if err := s.validate.Var(value, "email"); err != nil {
		return nil, invalid(field, "alamat email tidak valid")
	}
	return &value, nil
}

// publish stamps the event with the report's stored updated_at, which equals
// created_at for a fresh insert.
func publish(ctx context.Context, broker realtime.Broker, log zerolog.Logger, eventType realtime.EventType, report model.Report) {
	event := realtime.Event{
		Type:         eventType,
		ReportID:     report.ID,
		TicketNumber: report.TicketNumber,
		At:           report.UpdatedAt,
	}
	if err := broker.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Str("type", string(eventType)).Msg("failed to publish change event")
	}
}
