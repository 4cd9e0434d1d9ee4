package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/muednote/internal/config"
	"github.com/xiaot623/gogo/muednote/internal/domain"
	"github.com/xiaot623/gogo/muednote/internal/hub"
	"github.com/xiaot623/gogo/muednote/internal/service"
	transporthttp "github.com/xiaot623/gogo/muednote/internal/transport/http"
	"github.com/xiaot623/gogo/muednote/internal/window"
	"github.com/xiaot623/gogo/muednote/internal/ws"
	"github.com/xiaot623/gogo/muednote/policy"
	"github.com/xiaot623/gogo/muednote/tests/helpers"
)

func startServer(t *testing.T) (*httptest.Server, *hub.Hub) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	cfg := &config.Config{
		IntakeMode:     domain.IntakeModePersist,
		ProcessBudget:  time.Second,
		PingInterval:   time.Second,
		WriteTimeout:   time.Second,
		ReadTimeout:    5 * time.Second,
		MaxMessageSize: 4096,
	}
	db := helpers.NewTestStore(t)
	engine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	require.NoError(t, err)

	h := hub.NewHub()
	go h.Run(ctx)

	host := window.NewMemoryHost(domain.WindowMain, domain.WindowOverlay)
	svc := service.New(db, service.NewProcessor(db, cfg), engine, host, h, cfg)
	srv := httptest.NewServer(transporthttp.NewServer(svc, ws.NewServer(cfg, h)))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv, h
}

func TestClientCommands(t *testing.T) {
	srv, _ := startServer(t)
	c := NewClient(srv.URL + "/")
	ctx := context.Background()

	out, err := c.ProcessFragment(ctx, domain.Fragment{ID: "f1", Content: "from the cli", Timestamp: 1})
	require.NoError(t, err)
	assert.True(t, out.IsProcessed())

	messages, err := c.FetchMessages(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "from the cli", messages[0].Content)

	require.NoError(t, c.DeleteMessage(ctx, messages[0].ID))
	messages, err = c.FetchMessages(ctx)
	require.NoError(t, err)
	assert.Empty(t, messages)

	out, err = c.ProcessFragment(ctx, domain.Fragment{ID: "f2", Content: " "})
	require.NoError(t, err)
	assert.True(t, out.IsProcessed())

	_, err = c.Signal(ctx, "nope")
	require.Error(t, err)
}

func TestListenReceivesSignals(t *testing.T) {
	srv, h := startServer(t)
	c := NewClient(srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []string
	done := make(chan error, 1)
	go func() {
		done <- Listen(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/v1/events", func(eventType string, _ []byte) {
			mu.Lock()
			events = append(events, eventType)
			mu.Unlock()
		})
	}()

	require.Eventually(t, func() bool { return h.GetConnectionCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	resp, err := c.Signal(context.Background(), domain.SignalToggleDashboard)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Delivered)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(events) == 2
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, []string{"hello_ack", "toggle-dashboard"}, events)
	mu.Unlock()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop")
	}
}

func TestClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchMessages(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
