package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"report-service/internal/model"
)

type ReportRepository struct {
	db      *gorm.DB
	tickets *TicketGenerator
	now     func() time.Time
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{
		db:      db,
		tickets: NewTicketGenerator(time.Now),
		now:     time.Now,
	}
}

// WithClock swaps the time source used for timestamps and the first ticket
// candidate.
func (r *ReportRepository) WithClock(now func() time.Time) *ReportRepository {
	r.now = now
	r.tickets.now = now
	return r
}

// List returns every report, newest first.
func (r *ReportRepository) List(ctx context.Context) ([]model.Report, error) {
	var rows []Record
	if err := r.db.WithContext(ctx).
		Model(&model.Report{}).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, &FetchError{Op: "reports", Err: err}
	}

	reports := make([]model.Report, 0, len(rows))
	for _, row := range rows {
		reports = append(reports, ReportFromRecord(row))
	}
	return reports, nil
}

// GetByTicket matches ticket_number exactly. A missing report yields (nil, nil).
func (r *ReportRepository) GetByTicket(ctx context.Context, ticket string) (*model.Report, error) {
	report, err := findReport(r.db.WithContext(ctx), "ticket_number = ?", ticket)
	if err != nil {
		return nil, &FetchError{Op: "report by ticket", Err: err}
	}
	return report, nil
}

func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	report, err := findReport(r.db.WithContext(ctx), "id = ?", id)
	if err != nil {
		return nil, &FetchError{Op: "report by id", Err: err}
	}
	return report, nil
}

// Insert persists a new report as status "new" together with its first
// follow-up entry. The ticket number is assigned here, inside the same
// transaction, and reporter identity is dropped for anonymous reports.
func (r *ReportRepository) Insert(ctx context.Context, report model.Report, first *model.FollowUp) (*model.Report, error) {
	now := r.now()

	report.ID = uuid.Nil
	report.Status = model.ReportStatusNew
	report.CreatedAt = now
	report.UpdatedAt = now
	if report.IsAnonymous {
		report.ClearReporterIdentity()
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ticket, err := r.tickets.Next(func(candidate string) (bool, error) {
			return ticketTaken(tx, candidate)
		})
		if err != nil {
			return err
		}
		report.TicketNumber = ticket

		if err := tx.Create(&report).Error; err != nil {
			return err
		}

		if first != nil {
			entry := *first
			entry.ReportID = report.ID
			entry.NewStatus = model.ReportStatusNew
			entry.CreatedAt = now
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, &InsertError{Err: err}
	}

	return &report, nil
}

// UpdateStatus moves a report from expected to status, stores notes when
// given and appends the follow-up. The update is conditional on the current
// status so that two admins cannot silently overwrite each other.
func (r *ReportRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	expected model.ReportStatus,
	status model.ReportStatus,
	notes *string,
	followUp *model.FollowUp,
) (*model.Report, error) {
	now := r.now()
	var updated *model.Report

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		changes := map[string]interface{}{
			"status":     status,
			"updated_at": now,
		}
		if notes != nil {
			changes["notes"] = *notes
		}

		result := tx.Model(&model.Report{}).
			Where("id = ? AND status = ?", id, expected).
			Updates(changes)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStaleStatus
		}

		if followUp != nil {
			entry := *followUp
			entry.ReportID = id
			entry.NewStatus = status
			entry.CreatedAt = now
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}

		report, err := findReport(tx, "id = ?", id)
		if err != nil {
			return err
		}
		if report == nil {
			return gorm.ErrRecordNotFound
		}
		updated = report
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrStaleStatus) {
			return nil, ErrStaleStatus
		}
		return nil, &UpdateError{Op: "report status", Err: err}
	}

	return updated, nil
}

// UpdateAssignment sets priority and assignee. A missing report yields (nil, nil).
func (r *ReportRepository) UpdateAssignment(ctx context.Context, id uuid.UUID, priority *model.Priority, assignedTo *string) (*model.Report, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Report{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"priority":    priority,
			"assigned_to": assignedTo,
			"updated_at":  r.now(),
		})
	if result.Error != nil {
		return nil, &UpdateError{Op: "report assignment", Err: result.Error}
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

func (r *ReportRepository) ListFollowUps(ctx context.Context, reportID uuid.UUID) ([]model.FollowUp, error) {
	var entries []model.FollowUp
	if err := r.db.WithContext(ctx).
		Where("report_id = ?", reportID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, &FetchError{Op: "follow-ups", Err: err}
	}
	return entries, nil
}

func findReport(db *gorm.DB, query string, args ...interface{}) (*model.Report, error) {
	var rows []Record
	if err := db.Model(&model.Report{}).
		Where(query, args...).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	report := ReportFromRecord(rows[0])
	return &report, nil
}

func ticketTaken(tx *gorm.DB, candidate string) (bool, error) {
	var count int64
	if err := tx.Model(&model.Report{}).
		Where("ticket_number = ?", candidate).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
