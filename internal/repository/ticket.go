package repository

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"time"
)

const (
	TicketPrefix       = "QMR-"
	ticketDigits       = 8
	maxTicketAttempts  = 8
	ticketDigitsModulo = 100_000_000
)

var ticketPattern = regexp.MustCompile(`^QMR-\d{8}$`)

var ErrTicketExhausted = errors.New("no free ticket number")

// ValidTicket reports whether s has the QMR-######## shape.
func ValidTicket(s string) bool {
	return ticketPattern.MatchString(s)
}

// TicketGenerator produces ticket numbers. The first candidate is derived from
// the submission time, later ones are random.
type TicketGenerator struct {
	now    func() time.Time
	random func() (int64, error)
}

func NewTicketGenerator(now func() time.Time) *TicketGenerator {
	if now == nil {
		now = time.Now
	}
	return &TicketGenerator{now: now, random: randomTicketDigits}
}

// Next returns the first candidate for which taken reports false.
func (g *TicketGenerator) Next(taken func(candidate string) (bool, error)) (string, error) {
	candidate := formatTicket(g.now().UnixMilli() % ticketDigitsModulo)
	for attempt := 0; attempt < maxTicketAttempts; attempt++ {
		if attempt > 0 {
			n, err := g.random()
			if err != nil {
				return "", fmt.Errorf("random ticket: %w", err)
			}
			candidate = formatTicket(n)
		}
		exists, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", ErrTicketExhausted
}

func formatTicket(n int64) string {
	return fmt.Sprintf("%s%0*d", TicketPrefix, ticketDigits, n)
}

func randomTicketDigits() (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(ticketDigitsModulo))
	if err != nil {
		return 0, err
	}
	return n.Int64(), nil
}
