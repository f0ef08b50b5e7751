package push

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"internhub/internal/contextutils"
	"internhub/internal/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newHubServer(t *testing.T, hub *Hub, principalID int64, role string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = r.WithContext(contextutils.WithPrincipal(r.Context(), principalID, role))
		hub.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubDeliversToConnectedClient(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	srv := newHubServer(t, hub, 7, models.RoleStudent)
	conn := dial(t, srv)

	// The server registers the client asynchronously, so publish until
	// the event lands or the deadline passes.
	received := make(chan Event, 1)
	go func() {
		var event Event
		if err := conn.ReadJSON(&event); err == nil {
			received <- event
		}
	}()

	deadline := time.After(time.Second)
	for {
		hub.Publish(models.RoleStudent, 7, Event{Kind: "application.status", Payload: "accepted"})
		select {
		case event := <-received:
			assert.Equal(t, "application.status", event.Kind)
			assert.False(t, event.Timestamp.IsZero())
			return
		case <-deadline:
			t.Fatal("event never delivered")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestHubDropsEventsForAbsentPrincipal(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	// No client connected for this principal; Publish must be a no-op.
	hub.Publish(models.RoleOrganization, 99, Event{Kind: "application.received"})
}

func TestHubPublishDuringDisconnect(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	srv := newHubServer(t, hub, 11, models.RoleStudent)
	conn := dial(t, srv)

	// Hammer Publish while the connection tears down. A send on a closed
	// channel would panic and fail the test.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			hub.Publish(models.RoleStudent, 11, Event{Kind: "application.status"})
		}
	}()

	conn.Close()
	wg.Wait()
}
