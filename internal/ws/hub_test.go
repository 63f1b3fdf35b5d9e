package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/damoang/angple-plugins/internal/plugin"
	"github.com/damoang/angple-plugins/internal/pluginstore/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(nil, "", nil)
	go hub.Run()
	t.Cleanup(hub.Stop)

	router := gin.New()
	router.GET("/ws", Handler(hub, nil))
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, hub *Hub, url string) *websocket.Conn {
	t.Helper()
	before := hub.ClientCount()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool { return hub.ClientCount() == before+1 }, time.Second, 10*time.Millisecond)
	return conn
}

func TestHub_BroadcastsPluginEvents(t *testing.T) {
	hub, url := startHub(t)
	a := dial(t, hub, url)
	b := dial(t, hub, url)

	name := "notice"
	hub.Emit(plugin.Event{
		Topic: plugin.TopicPluginDisabled,
		Plugin: &domain.Plugin{
			ID:           3,
			ImportString: "example.Notice",
			Name:         &name,
			Status:       domain.StatusDisabled,
		},
	})

	for _, conn := range []*websocket.Conn{a, b} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var msg plugin.EventMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, plugin.TopicPluginDisabled, msg.Topic)
		assert.EqualValues(t, 3, msg.PluginID)
		assert.Equal(t, "disabled", msg.Status)
	}
}

func TestHub_Unregister(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, hub, url)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_IgnoresEventWithoutPlugin(t *testing.T) {
	hub := NewHub(nil, "", nil)
	assert.NotPanics(t, func() { hub.Emit(plugin.Event{Topic: plugin.TopicPluginEnabled}) })
	assert.Empty(t, hub.broadcast)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://admin.example.com"})

	req := httptest.NewRequest("GET", "/ws", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://admin.example.com")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, check(req))

	assert.True(t, originChecker(nil)(req))
}
