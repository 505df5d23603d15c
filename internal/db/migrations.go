package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS reports (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		ticket_number VARCHAR(16) NOT NULL,
		violence_type VARCHAR(32) NOT NULL,
		incident_date DATE,
		incident_time VARCHAR(8),
		location TEXT NOT NULL,
		description TEXT NOT NULL,
		impact TEXT,
		victim_name VARCHAR(255),
		victim_age INTEGER CHECK (victim_age IS NULL OR victim_age BETWEEN 0 AND 120),
		victim_gender VARCHAR(32),
		victim_phone VARCHAR(32),
		victim_email VARCHAR(255),
		perpetrator_name VARCHAR(255),
		perpetrator_relationship VARCHAR(64),
		witness_name VARCHAR(255),
		witness_contact VARCHAR(255),
		is_anonymous BOOLEAN NOT NULL DEFAULT FALSE,
		reporter_name VARCHAR(255),
		reporter_phone VARCHAR(32),
		reporter_email VARCHAR(255),
		reporter_relationship VARCHAR(64),
		status VARCHAR(16) NOT NULL DEFAULT 'new',
		priority VARCHAR(16),
		assigned_to VARCHAR(255),
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_reports_ticket_number ON reports (ticket_number);`,
	`CREATE INDEX IF NOT EXISTS idx_reports_status ON reports (status);`,
	`CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports (created_at);`,
	// anonymous rows must never carry reporter identity
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_reports_anonymous_identity') THEN
			ALTER TABLE reports ADD CONSTRAINT chk_reports_anonymous_identity CHECK (
				NOT is_anonymous OR (
					reporter_name IS NULL AND reporter_phone IS NULL
					AND reporter_email IS NULL AND reporter_relationship IS NULL
				)
			);
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS report_follow_ups (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		report_id UUID NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
		author_id UUID,
		author_name VARCHAR(255),
		old_status VARCHAR(16),
		new_status VARCHAR(16) NOT NULL,
		message TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_report_follow_ups_report_id ON report_follow_ups (report_id);`,
	`CREATE TABLE IF NOT EXISTS admins (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email VARCHAR(255) NOT NULL,
		name VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(32) NOT NULL CHECK (role IN ('ADMIN', 'COUNSELOR')),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_admins_email ON admins (LOWER(email));`,
	`CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		whatsapp_notifications BOOLEAN NOT NULL DEFAULT TRUE,
		email_notifications BOOLEAN NOT NULL DEFAULT TRUE,
		sms_notifications BOOLEAN NOT NULL DEFAULT FALSE,
		emergency_phone VARCHAR(32),
		admin_email VARCHAR(255),
		whatsapp_number VARCHAR(32),
		templates JSONB NOT NULL DEFAULT '{}'::jsonb,
		auto_logout BOOLEAN NOT NULL DEFAULT TRUE,
		session_timeout_minutes INTEGER NOT NULL DEFAULT 30,
		require_password_change BOOLEAN NOT NULL DEFAULT FALSE,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE OR REPLACE FUNCTION set_row_updated_at()
	RETURNS TRIGGER AS $$
	BEGIN
		NEW.updated_at = NOW();
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_admins_updated_at') THEN
			CREATE TRIGGER trg_admins_updated_at
				BEFORE UPDATE ON admins
				FOR EACH ROW
				EXECUTE PROCEDURE set_row_updated_at();
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_settings_updated_at') THEN
			CREATE TRIGGER trg_settings_updated_at
				BEFORE UPDATE ON settings
				FOR EACH ROW
				EXECUTE PROCEDURE set_row_updated_at();
		END IF;
	END
	$$;`,
}

// Migrate applies every statement in order. Each one is idempotent, so it is
// safe to run on every start.
func Migrate(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
