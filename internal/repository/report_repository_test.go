package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"report-service/internal/model"
)

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

func strPtr(s string) *string { return &s }

func sampleReport() model.Report {
	return model.Report{
		ViolenceType: model.ViolenceTypeBullying,
		IncidentDate: strPtr("2024-03-10"),
		Location:     "Classroom A1",
		Description:  "Pushed repeatedly during break",
		VictimName:   strPtr("X"),
	}
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func TestReportRepository_Insert(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2024, 3, 11, 9, 30, 0, 0, time.UTC)
	repo := NewReportRepository(db).WithClock(fixedClock(now))
	ctx := context.Background()

	t.Run("anonymous report drops reporter identity", func(t *testing.T) {
		input := sampleReport()
		input.IsAnonymous = true
		input.ReporterName = strPtr("Y")
		input.ReporterEmail = strPtr("y@example.com")
		input.Status = model.ReportStatusDone

		created, err := repo.Insert(ctx, input, &model.FollowUp{Message: "Laporan diterima"})
		require.NoError(t, err)
		assert.True(t, ValidTicket(created.TicketNumber))
		assert.Equal(t, model.ReportStatusNew, created.Status)

		stored, err := repo.GetByTicket(ctx, created.TicketNumber)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Nil(t, stored.ReporterName)
		assert.Nil(t, stored.ReporterEmail)
		assert.Nil(t, stored.ReporterPhone)
		assert.Nil(t, stored.ReporterRelationship)
		assert.Equal(t, model.ReportStatusNew, stored.Status)
		assert.Equal(t, model.ViolenceTypeBullying, stored.ViolenceType)
		assert.Equal(t, "Classroom A1", stored.Location)
		require.NotNil(t, stored.IncidentDate)
		assert.Equal(t, "2024-03-10", *stored.IncidentDate)

		entries, err := repo.ListFollowUps(ctx, created.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, model.ReportStatusNew, entries[0].NewStatus)
		assert.Equal(t, "Laporan diterima", entries[0].Message)
	})

	t.Run("ticket collision falls back to a distinct ticket", func(t *testing.T) {
		first, err := repo.Insert(ctx, sampleReport(), nil)
		require.NoError(t, err)
		second, err := repo.Insert(ctx, sampleReport(), nil)
		require.NoError(t, err)

		assert.NotEqual(t, first.TicketNumber, second.TicketNumber)
		assert.True(t, ValidTicket(second.TicketNumber))
	})
}

func TestReportRepository_GetByTicket(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReportRepository(db)
	ctx := context.Background()

	created, err := repo.Insert(ctx, sampleReport(), nil)
	require.NoError(t, err)

	t.Run("missing ticket is not an error", func(t *testing.T) {
		report, err := repo.GetByTicket(ctx, "QMR-00000000")
		assert.NoError(t, err)
		assert.Nil(t, report)
	})

	t.Run("match is case sensitive", func(t *testing.T) {
		report, err := repo.GetByTicket(ctx, "qmr-"+created.TicketNumber[4:])
		assert.NoError(t, err)
		assert.Nil(t, report)
	})

	t.Run("closed database surfaces a fetch error", func(t *testing.T) {
		broken := setupTestDB(t)
		sqlDB, err := broken.DB()
		require.NoError(t, err)
		require.NoError(t, sqlDB.Close())

		_, err = NewReportRepository(broken).GetByTicket(ctx, created.TicketNumber)
		var fetchErr *FetchError
		assert.True(t, errors.As(err, &fetchErr))
	})
}

func TestReportRepository_List(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		repo := NewReportRepository(db).WithClock(fixedClock(base.Add(time.Duration(i) * time.Hour)))
		_, err := repo.Insert(ctx, sampleReport(), nil)
		require.NoError(t, err)
	}

	reports, err := NewReportRepository(db).List(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.True(t, reports[0].CreatedAt.After(reports[1].CreatedAt))
	assert.True(t, reports[1].CreatedAt.After(reports[2].CreatedAt))
}

func TestReportRepository_UpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReportRepository(db)
	ctx := context.Background()

	created, err := repo.Insert(ctx, sampleReport(), nil)
	require.NoError(t, err)

	old := model.ReportStatusNew
	updated, err := repo.UpdateStatus(ctx, created.ID, model.ReportStatusNew, model.ReportStatusDone,
		strPtr("Resolved, see attached"),
		&model.FollowUp{OldStatus: &old, AuthorName: "Admin", Message: "Resolved, see attached"})
	require.NoError(t, err)
	assert.Equal(t, model.ReportStatusDone, updated.Status)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "Resolved, see attached", *updated.Notes)

	t.Run("stale expected status is rejected", func(t *testing.T) {
		_, err := repo.UpdateStatus(ctx, created.ID, model.ReportStatusNew, model.ReportStatusInProgress, nil, nil)
		assert.ErrorIs(t, err, ErrStaleStatus)
	})

	t.Run("unknown id is stale as well", func(t *testing.T) {
		_, err := repo.UpdateStatus(ctx, uuid.New(), model.ReportStatusNew, model.ReportStatusDone, nil, nil)
		assert.ErrorIs(t, err, ErrStaleStatus)
	})

	entries, err := repo.ListFollowUps(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.ReportStatusDone, entries[0].NewStatus)
	require.NotNil(t, entries[0].OldStatus)
	assert.Equal(t, model.ReportStatusNew, *entries[0].OldStatus)
}

func TestReportRepository_UpdateAssignment(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReportRepository(db)
	ctx := context.Background()

	created, err := repo.Insert(ctx, sampleReport(), nil)
	require.NoError(t, err)

	high := model.PriorityHigh
	updated, err := repo.UpdateAssignment(ctx, created.ID, &high, strPtr("Ustadzah Aminah"))
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.NotNil(t, updated.Priority)
	assert.Equal(t, model.PriorityHigh, *updated.Priority)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, "Ustadzah Aminah", *updated.AssignedTo)

	missing, err := repo.UpdateAssignment(ctx, uuid.New(), nil, nil)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}
