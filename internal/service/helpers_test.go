package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"report-service/internal/model"
	"report-service/internal/realtime"
	"report-service/internal/repository"
	"report-service/internal/sanitize"
)

type mockBroker struct {
	mock.Mock
}

func (m *mockBroker) Publish(ctx context.Context, event realtime.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockBroker) Subscribe(context.Context) (<-chan realtime.Event, func()) {
	ch := make(chan realtime.Event)
	return ch, func() {}
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) ReportCreated(ctx context.Context, settings model.Settings, report model.Report) {
	m.Called(ctx, settings, report)
}

func (m *mockNotifier) StatusUpdated(ctx context.Context, settings model.Settings, report model.Report, message string) {
	m.Called(ctx, settings, report, message)
}

func eventOfType(eventType realtime.EventType) interface{} {
	return mock.MatchedBy(func(e realtime.Event) bool { return e.Type == eventType })
}

type fixture struct {
	db         *gorm.DB
	reports    *repository.ReportRepository
	settings   *repository.SettingsRepository
	broker     *mockBroker
	notifier   *mockNotifier
	submission *SubmissionService
	lookup     *LookupService
	triage     *TriageService
}

var wib = time.FixedZone("WIB", 7*60*60)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&model.Report{}, &model.FollowUp{}, &model.Admin{}, &model.Settings{})
	require.NoError(t, err)

	return db
}

func newFixture(t *testing.T) *fixture {
	db := setupTestDB(t)
	reports := repository.NewReportRepository(db)
	settings := repository.NewSettingsRepository(db)
	broker := &mockBroker{}
	notifier := &mockNotifier{}
	sanitizer := sanitize.New()
	log := zerolog.Nop()

	return &fixture{
		db:         db,
		reports:    reports,
		settings:   settings,
		broker:     broker,
		notifier:   notifier,
		submission: NewSubmissionService(reports, settings, broker, notifier, sanitizer, log),
		lookup:     NewLookupService(reports),
		triage:     NewTriageService(reports, settings, broker, notifier, sanitizer, wib, log),
	}
}

func strPtr(s string) *string { return &s }

func validInput() SubmissionInput {
	return SubmissionInput{
		Consent:      true,
		ViolenceType: "bullying",
		IncidentDate: "2024-03-10",
		Location:     "Classroom A1",
		Description:  "Dipukul saat istirahat",
		VictimName:   "X",
	}
}

func counselor() model.Principal {
	return model.Principal{AdminID: uuid.New(), Name: "Ustadzah Aminah", Role: model.AdminRoleCounselor}
}

func administrator() model.Principal {
	return model.Principal{AdminID: uuid.New(), Name: "Admin", Role: model.AdminRoleAdmin}
}

// submit stores a report through the service with publish and notification
// expectations satisfied.
func (f *fixture) submit(t *testing.T, input SubmissionInput) *model.SubmissionReceipt {
	f.broker.On("Publish", mock.Anything, eventOfType(realtime.EventReportCreated)).Return(nil).Once()
	f.notifier.On("ReportCreated", mock.Anything, mock.Anything, mock.Anything).Return().Once()
	receipt, err := f.submission.Submit(context.Background(), input)
	require.NoError(t, err)
	return receipt
}
