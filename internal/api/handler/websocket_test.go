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

	"github.com/qs3c/portfolio_server/internal/pkg/jwt"
	"github.com/qs3c/portfolio_server/internal/pkg/ws"
)

func setupWebSocketServer(t *testing.T, origins []string) (*httptest.Server, *ws.Hub) {
	t.Helper()

	hub := ws.NewHub()
	h := NewWebSocketHandler(hub, testJWTSecret, origins)
	router := gin.New()
	router.GET("/api/admin/ws", h.Handle)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, hub
}

func wsURL(srv *httptest.Server, token string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/admin/ws?token=" + token
}

func TestWebSocketHandler_BroadcastReachesAdmin(t *testing.T) {
	srv, hub := setupWebSocketServer(t, nil)

	token, err := jwt.GenerateToken(7, "owner", testJWTSecret, 1)
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, token), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.IsOnline(7) }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Broadcast(&ws.Message{Type: "view_count", Data: map[string]int{"total": 3}}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Type string         `json:"type"`
		Data map[string]int `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "view_count", msg.Type)
	assert.Equal(t, 3, msg.Data["total"])

	conn.Close()
	assert.Eventually(t, func() bool { return !hub.IsOnline(7) }, time.Second, 10*time.Millisecond)
}

func TestWebSocketHandler_RejectsBadToken(t *testing.T) {
	srv, _ := setupWebSocketServer(t, nil)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "bogus"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://site.example"})

	req := httptest.NewRequest(http.MethodGet, "http://api.example/ws", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://site.example")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(req))

	req.Header.Set("Origin", "http://api.example")
	assert.True(t, check(req))

	assert.True(t, originChecker([]string{"*"})(req))
}
