package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"report-service/internal/stats"
)

func TestLocalBroker(t *testing.T) {
	broker := NewLocalBroker()
	ctx := context.Background()

	first, releaseFirst := broker.Subscribe(ctx)
	second, releaseSecond := broker.Subscribe(ctx)
	assert.Equal(t, 2, broker.Subscribers())

	event := Event{Type: EventReportCreated, TicketNumber: "QMR-00000001"}
	require.NoError(t, broker.Publish(ctx, event))
	assert.Equal(t, event, <-first)
	assert.Equal(t, event, <-second)

	releaseFirst()
	releaseFirst()
	_, open := <-first
	assert.False(t, open)
	assert.Equal(t, 1, broker.Subscribers())

	releaseSecond()
	assert.Zero(t, broker.Subscribers())
	assert.NoError(t, broker.Publish(ctx, event))
}

func startHub(t *testing.T, broker Broker, snapshot SnapshotFunc) (*httptest.Server, context.CancelFunc) {
	hub := NewHub(broker, snapshot, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(r.Context(), conn)
	}))
	t.Cleanup(func() {
		cancel()
		server.Close()
	})
	return server, cancel
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func readDashboard(t *testing.T, conn *websocket.Conn) stats.Dashboard {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	var dashboard stats.Dashboard
	require.NoError(t, json.Unmarshal(payload, &dashboard))
	return dashboard
}

func TestHub_PushesSnapshotAfterPublish(t *testing.T) {
	broker := NewLocalBroker()
	var calls int32
	snapshot := func(context.Context) (stats.Dashboard, error) {
		n := atomic.AddInt32(&calls, 1)
		return stats.Dashboard{Status: stats.StatusCounts{Total: int(n)}}, nil
	}
	server, _ := startHub(t, broker, snapshot)

	conn := dial(t, server)
	defer conn.Close()

	initial := readDashboard(t, conn)
	assert.Equal(t, 1, initial.Status.Total)

	require.NoError(t, broker.Publish(context.Background(), Event{Type: EventReportUpdated}))
	updated := readDashboard(t, conn)
	assert.Equal(t, 2, updated.Status.Total)
}

func TestHub_ReleasesSubscriptionWhenLastClientLeaves(t *testing.T) {
	broker := NewLocalBroker()
	snapshot := func(context.Context) (stats.Dashboard, error) { return stats.Dashboard{}, nil }
	server, _ := startHub(t, broker, snapshot)

	first := dial(t, server)
	second := dial(t, server)
	readDashboard(t, first)
	readDashboard(t, second)
	assert.Equal(t, 1, broker.Subscribers())

	require.NoError(t, first.Close())
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, broker.Subscribers())

	require.NoError(t, second.Close())
	assert.Eventually(t, func() bool { return broker.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_StopReleasesSubscription(t *testing.T) {
	broker := NewLocalBroker()
	snapshot := func(context.Context) (stats.Dashboard, error) { return stats.Dashboard{}, nil }
	server, cancel := startHub(t, broker, snapshot)

	conn := dial(t, server)
	defer conn.Close()
	readDashboard(t, conn)
	require.Equal(t, 1, broker.Subscribers())

	cancel()
	assert.Eventually(t, func() bool { return broker.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

// severableBroker lets a test cut the hub's feed the way a dropped Redis
// connection would.
type severableBroker struct {
	*LocalBroker
	mu       sync.Mutex
	releases []func()
}

func (b *severableBroker) Subscribe(ctx context.Context) (<-chan Event, func()) {
	ch, release := b.LocalBroker.Subscribe(ctx)
	b.mu.Lock()
	b.releases = append(b.releases, release)
	b.mu.Unlock()
	return ch, release
}

func (b *severableBroker) subscriptions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.releases)
}

func (b *severableBroker) sever(i int) {
	b.mu.Lock()
	release := b.releases[i]
	b.mu.Unlock()
	release()
}

func TestHub_ResubscribesWhenFeedClosesWithClients(t *testing.T) {
	broker := &severableBroker{LocalBroker: NewLocalBroker()}
	var calls int32
	snapshot := func(context.Context) (stats.Dashboard, error) {
		n := atomic.AddInt32(&calls, 1)
		return stats.Dashboard{Status: stats.StatusCounts{Total: int(n)}}, nil
	}
	server, _ := startHub(t, broker, snapshot)

	conn := dial(t, server)
	defer conn.Close()
	assert.Equal(t, 1, readDashboard(t, conn).Status.Total)
	require.Equal(t, 1, broker.subscriptions())

	broker.sever(0)
	assert.Eventually(t, func() bool {
		return broker.subscriptions() == 2 && broker.Subscribers() == 1
	}, 5*time.Second, 10*time.Millisecond)

	// fresh snapshot for whatever was missed while the feed was down
	assert.Equal(t, 2, readDashboard(t, conn).Status.Total)

	require.NoError(t, broker.Publish(context.Background(), Event{Type: EventReportUpdated}))
	assert.Equal(t, 3, readDashboard(t, conn).Status.Total)
}
