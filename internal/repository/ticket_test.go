package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketGenerator_Next(t *testing.T) {
	now := time.UnixMilli(1710147600123)
	gen := NewTicketGenerator(fixedClock(now))

	t.Run("first candidate uses the last eight digits of unix millis", func(t *testing.T) {
		ticket, err := gen.Next(func(string) (bool, error) { return false, nil })
		require.NoError(t, err)
		assert.Equal(t, "QMR-47600123", ticket)
		assert.True(t, ValidTicket(ticket))
	})

	t.Run("collision falls back to random digits", func(t *testing.T) {
		gen.random = func() (int64, error) { return 42, nil }
		ticket, err := gen.Next(func(c string) (bool, error) { return c == "QMR-47600123", nil })
		require.NoError(t, err)
		assert.Equal(t, "QMR-00000042", ticket)
	})

	t.Run("gives up after bounded attempts", func(t *testing.T) {
		calls := 0
		_, err := gen.Next(func(string) (bool, error) {
			calls++
			return true, nil
		})
		assert.ErrorIs(t, err, ErrTicketExhausted)
		assert.Equal(t, maxTicketAttempts, calls)
	})

	t.Run("lookup failure aborts", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := gen.Next(func(string) (bool, error) { return false, boom })
		assert.ErrorIs(t, err, boom)
	})
}

func TestValidTicket(t *testing.T) {
	assert.True(t, ValidTicket("QMR-00000000"))
	assert.False(t, ValidTicket("QMR-1234567"))
	assert.False(t, ValidTicket("qmr-12345678"))
	assert.False(t, ValidTicket(" QMR-12345678"))
}
