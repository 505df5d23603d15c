package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"report-service/internal/config"
	"report-service/internal/model"
)

const mailQueueSize = 64

// Sender is satisfied by *gomail.Dialer.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type MailNotifier struct {
	sender Sender
	from   string
	name   string
	queue  chan *gomail.Message
	log    zerolog.Logger
}

func NewMailNotifier(cfg config.SMTPConfig, log zerolog.Logger) *MailNotifier {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return NewMailNotifierWithSender(dialer, cfg.FromAddress, cfg.FromName, log)
}

func NewMailNotifierWithSender(sender Sender, from, name string, log zerolog.Logger) *MailNotifier {
	return &MailNotifier{
		sender: sender,
		from:   from,
		name:   name,
		queue:  make(chan *gomail.Message, mailQueueSize),
		log:    log.With().Str("component", "notify").Logger(),
	}
}

// Run sends queued messages until ctx is cancelled.
func (n *MailNotifier) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-n.queue:
			if err := n.sender.DialAndSend(msg); err != nil {
				n.log.Error().Err(err).Strs("to", msg.GetHeader("To")).Msg("failed to send email")
			}
		}
	}
}

func (n *MailNotifier) ReportCreated(_ context.Context, settings model.Settings, report model.Report) {
	if settings.AdminEmail == "" {
		return
	}
	templates := settings.Templates.Data()
	body := Render(templates.NewReport, report, "")
	subject := fmt.Sprintf("Laporan baru %s (%s)", report.TicketNumber, report.ViolenceType.Label())
	n.enqueue(settings.AdminEmail, subject, body)
}

func (n *MailNotifier) StatusUpdated(_ context.Context, settings model.Settings, report model.Report, message string) {
	if report.ReporterEmail == nil || *report.ReporterEmail == "" {
		return
	}
	templates := settings.Templates.Data()
	body := Render(templates.StatusUpdate, report, message)
	subject := fmt.Sprintf("Pembaruan laporan %s", report.TicketNumber)
	n.enqueue(*report.ReporterEmail, subject, body)
}

func (n *MailNotifier) enqueue(to, subject, body string) {
	m := gomail.NewMessage()
	if n.name != "" {
		m.SetAddressHeader("From", n.from, n.name)
	} else {
		m.SetHeader("From", n.from)
	}
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	select {
	case n.queue <- m:
	default:
		n.log.Warn().Str("to", to).Msg("mail queue full, dropping notification")
	}
}
