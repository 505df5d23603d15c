// Package notify delivers templated e-mail about report activity. Delivery
// happens on a background worker and failures are only logged.
package notify

import (
	"context"
	"strings"

	"report-service/internal/model"
)

type Notifier interface {
	ReportCreated(ctx context.Context, settings model.Settings, report model.Report)
	StatusUpdated(ctx context.Context, settings model.Settings, report model.Report, message string)
}

// Render fills the {ticket_id}, {status} and {message} placeholders.
func Render(template string, report model.Report, message string) string {
	replacer := strings.NewReplacer(
		"{ticket_id}", report.TicketNumber,
		"{status}", report.Status.Label(),
		"{message}", message,
	)
	return strings.TrimSpace(replacer.Replace(template))
}

type NopNotifier struct{}

func (NopNotifier) ReportCreated(context.Context, model.Settings, model.Report) {}

func (NopNotifier) StatusUpdated(context.Context, model.Settings, model.Report, string) {}
