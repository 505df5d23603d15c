package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"report-service/internal/model"
)

type captureSender struct {
	mu   sync.Mutex
	sent []*gomail.Message
}

func (c *captureSender) DialAndSend(m ...*gomail.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, m...)
	return nil
}

func (c *captureSender) messages() []*gomail.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*gomail.Message(nil), c.sent...)
}

func TestRender(t *testing.T) {
	report := model.Report{TicketNumber: "QMR-12345678", Status: model.ReportStatusDone}
	got := Render(model.DefaultSettings().Templates.Data().StatusUpdate, report, "Kasus ditutup bersama wali.")
	assert.Equal(t, "Pembaruan untuk tiket QMR-12345678. Status: Selesai. Kasus ditutup bersama wali.", got)
}

func TestMailNotifier(t *testing.T) {
	sender := &captureSender{}
	n := NewMailNotifierWithSender(sender, "noreply@qomarun.com", "Qomarun", zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go n.Run(ctx)

	settings := model.DefaultSettings()
	email := "wali@example.com"
	report := model.Report{
		TicketNumber:  "QMR-00000001",
		Status:        model.ReportStatusInProgress,
		ViolenceType:  model.ViolenceTypeVerbal,
		ReporterEmail: &email,
	}

	n.ReportCreated(ctx, settings, report)
	n.StatusUpdated(ctx, settings, report, "Sedang ditangani konselor.")
	n.StatusUpdated(ctx, settings, model.Report{TicketNumber: "QMR-00000002"}, "no recipient")

	require.Eventually(t, func() bool { return len(sender.messages()) == 2 }, time.Second, 10*time.Millisecond)

	msgs := sender.messages()
	assert.Equal(t, []string{settings.AdminEmail}, msgs[0].GetHeader("To"))
	assert.Equal(t, []string{"Laporan baru QMR-00000001 (Kekerasan Verbal/Psikologis)"}, msgs[0].GetHeader("Subject"))
	assert.Equal(t, []string{email}, msgs[1].GetHeader("To"))
}
