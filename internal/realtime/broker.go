// Package realtime carries report change notifications to live dashboards.
package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventReportCreated EventType = "report.created"
	EventReportUpdated EventType = "report.updated"
)

// Event only signals that something changed; subscribers refetch.
type Event struct {
	Type         EventType `json:"type"`
	ReportID     uuid.UUID `json:"report_id"`
	TicketNumber string    `json:"ticket_number"`
	At           time.Time `json:"at"`
}

type Broker interface {
	Publish(ctx context.Context, event Event) error
	// Subscribe returns a feed of events and a release function. The channel
	// is closed once released.
	Subscribe(ctx context.Context) (<-chan Event, func())
}

const subscriberBuffer = 16

// LocalBroker fans events out within a single process.
type LocalBroker struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
}

func NewLocalBroker() *LocalBroker {
	return &LocalBroker{subs: make(map[int]chan Event)}
}

func (b *LocalBroker) Publish(_ context.Context, event Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
			// a pending event already forces a refetch
		}
	}
	return nil
}

func (b *LocalBroker) Subscribe(_ context.Context) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, subscriberBuffer)
	b.subs[id] = ch

	var once sync.Once
	release := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
	return ch, release
}

// Subscribers reports the number of live subscriptions.
func (b *LocalBroker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
