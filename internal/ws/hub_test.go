package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/sanmateo-reports/internal/domain/entity"
	"github.com/ignatzorin/sanmateo-reports/internal/domain/valueobject"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := NewHub()
	go hub.Run(ctx)
	return hub
}

func receive(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case raw := <-c.send:
		var env Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		return env
	case <-time.After(time.Second):
		t.Fatal("сообщение не пришло")
		return Envelope{}
	}
}

func TestHub_PublishReachesOnlyTopicSubscribers(t *testing.T) {
	hub := startHub(t)
	mine := NewClient(nil, hub, "SM-2K4X-AB12")
	other := NewClient(nil, hub, "SM-3Y5Z-CD34")
	require.True(t, hub.Register(mine))
	require.True(t, hub.Register(other))

	require.NoError(t, hub.Publish("SM-2K4X-AB12", EventReportUpdated, map[string]string{"status": "resolved"}))

	env := receive(t, mine)
	assert.Equal(t, EventReportUpdated, env.Type)
	assert.Len(t, other.send, 0)
}

func TestHub_UnregisterRemovesClient(t *testing.T) {
	hub := startHub(t)
	c := NewClient(nil, hub, AdminTopic)
	require.True(t, hub.Register(c))
	assert.Eventually(t, func() bool { return hub.Subscribers(AdminTopic) == 1 }, time.Second, 5*time.Millisecond)

	c.Close()
	c.Close()
	assert.Eventually(t, func() bool { return hub.Subscribers(AdminTopic) == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_StoppedHubRejectsPublish(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	assert.False(t, hub.Register(NewClient(nil, hub, AdminTopic)))
	// Буфер может принять несколько сообщений, но не бесконечно.
	var err error
	for i := 0; i < 64 && err == nil; i++ {
		err = hub.Publish(AdminTopic, EventReportUpdated, nil)
	}
	assert.Error(t, err)
}

func TestReportNotifier_FansOutToReportAndAdmin(t *testing.T) {
	hub := startHub(t)
	watcher := NewClient(nil, hub, "SM-2K4X-AB12")
	admin := NewClient(nil, hub, AdminTopic)
	require.True(t, hub.Register(watcher))
	require.True(t, hub.Register(admin))

	notifier := NewReportNotifier(hub, func(r *entity.Report) any {
		return map[string]string{"id": r.ID, "status": string(r.Status)}
	})
	notifier.NotifyReportUpdated(&entity.Report{ID: "SM-2K4X-AB12", Status: valueobject.ReportStatusResolved})

	for _, c := range []*Client{watcher, admin} {
		env := receive(t, c)
		assert.Equal(t, EventReportUpdated, env.Type)
		data, ok := env.Data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "SM-2K4X-AB12", data["id"])
	}
}

func TestClient_DeliversOverWebSocket(t *testing.T) {
	hub := startHub(t)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := NewClient(conn, hub, "SM-2K4X-AB12")
		if hub.Register(c) {
			c.Run(context.Background())
		}
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Subscribers("SM-2K4X-AB12") == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, hub.Publish("SM-2K4X-AB12", EventReportUpdated, "ping"))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env Envelope
	require.NoError(t, conn.ReadJSON(&env))
	assert.Equal(t, EventReportUpdated, env.Type)
	assert.Equal(t, "ping", env.Data)
}
