package websocket

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/m5cents/call-screening-backend/internal/service/callrouting"
)

func startHub(t *testing.T, config HubConfig) (*Hub, string) {
	t.Helper()

	hub := NewHub(zaptest.NewLogger(t), config)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	srv := httptest.NewServer(Handler(hub))
	t.Cleanup(srv.Close)

	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return hub.ClientCount() == want
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHubBroadcastsToAllClients(t *testing.T) {
	hub, url := startHub(t, DefaultHubConfig())

	first := dial(t, url)
	second := dial(t, url)
	waitForClients(t, hub, 2)

	sent := callrouting.Notification{
		Type:    callrouting.NotifyRouted,
		CallSID: "CA123",
		From:    "+12125551234",
		Summary: "caller needs help with billing",
	}
	hub.Publish(sent)

	for _, conn := range []*websocket.Conn{first, second} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var got callrouting.Notification
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, callrouting.NotifyRouted, got.Type)
		assert.Equal(t, "CA123", got.CallSID)
		assert.Equal(t, sent.Summary, got.Summary)
	}
}

func TestHubDisconnectReapsClient(t *testing.T) {
	hub, url := startHub(t, DefaultHubConfig())

	conn := dial(t, url)
	waitForClients(t, hub, 1)

	require.NoError(t, conn.Close())
	waitForClients(t, hub, 0)
}

func TestHubRejectsClientsOverLimit(t *testing.T) {
	config := DefaultHubConfig()
	config.MaxClients = 1
	hub, url := startHub(t, config)

	dial(t, url)
	waitForClients(t, hub, 1)

	// Second connection upgrades but is immediately closed by the hub.
	extra := dial(t, url)
	require.NoError(t, extra.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := extra.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 1, hub.ClientCount())
}

func TestHubPublishNeverBlocks(t *testing.T) {
	config := DefaultHubConfig()
	config.BroadcastBufferSize = 1
	hub := NewHub(zaptest.NewLogger(t), config)
	// Hub is intentionally not running: the buffer fills immediately.

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			hub.Publish(callrouting.Notification{Type: callrouting.NotifyIncoming})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full broadcast buffer")
	}
	assert.Equal(t, int64(9), hub.Dropped())
}

func TestHubNotifierForwardsToHub(t *testing.T) {
	hub, url := startHub(t, DefaultHubConfig())
	conn := dial(t, url)
	waitForClients(t, hub, 1)

	notifier := NewHubNotifier(hub)
	notifier.Notify(context.Background(), callrouting.Notification{
		Type:    callrouting.NotifyBlacklisted,
		CallSID: "CA999",
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got callrouting.Notification
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, callrouting.NotifyBlacklisted, got.Type)
}
