package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/jwt"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/ws"
)

const wsSecret = "ws-secret"

func newWSServer(t *testing.T, hub *ws.Hub, origins []string) *httptest.Server {
	t.Helper()
	router := gin.New()
	router.GET("/ws", NewWebSocketHandler(hub, wsSecret, origins).Handle)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func wsURL(server *httptest.Server, token string) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=" + token
}

func TestWebSocketHandler_PushesToUser(t *testing.T) {
	hub := ws.NewHub()
	server := newWSServer(t, hub, nil)

	token, err := jwt.GenerateToken(7, wsSecret, 1)
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, token), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.IsOnline(7) }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.SendToUser(7, &ws.Message{Type: "notification", Data: "hello"}))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"hello"`)

	conn.Close()
	assert.Eventually(t, func() bool { return !hub.IsOnline(7) }, time.Second, 10*time.Millisecond)
}

func TestWebSocketHandler_RejectsBadToken(t *testing.T) {
	server := newWSServer(t, ws.NewHub(), nil)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(server, "garbage"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL(server, ""), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocketHandler_CheckOrigin(t *testing.T) {
	server := newWSServer(t, ws.NewHub(), []string{"https://app.onnasoft.com"})
	token, err := jwt.GenerateToken(8, wsSecret, 1)
	require.NoError(t, err)

	header := http.Header{}
	header.Set("Origin", "https://evil.example")
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(server, token), header)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header.Set("Origin", "https://app.onnasoft.com")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, token), header)
	require.NoError(t, err)
	conn.Close()
}
