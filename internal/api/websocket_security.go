package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/FocuswithJustin/JuniperSearch/internal/logging"
	"github.com/FocuswithJustin/JuniperSearch/internal/server"
)

// WebSocketSecurityConfig limits the /ws event stream.
type WebSocketSecurityConfig struct {
	// AllowedOrigins accepts "*" and "*.domain" patterns. Empty accepts any
	// origin, including none.
	AllowedOrigins []string

	MaxMessageRate int   // inbound messages per second per connection
	MaxMessageSize int64 // bytes

	// RequireAuth demands the API key before the upgrade. Browsers cannot
	// set headers on a websocket handshake, so api_key in the query works too.
	RequireAuth bool
	Auth        AuthConfig
}

// DefaultWebSocketSecurityConfig returns the default limits.
func DefaultWebSocketSecurityConfig() WebSocketSecurityConfig {
	return WebSocketSecurityConfig{
		MaxMessageRate: 10,
		MaxMessageSize: 4096,
	}
}

// newMessageBucket allows messagesPerSecond with bursts of twice that.
func newMessageBucket(messagesPerSecond int) *bucket {
	rate := float64(messagesPerSecond)
	return newBucket(2*rate, rate, time.Now())
}

func (c WebSocketSecurityConfig) originOK(r *http.Request) bool {
	if len(c.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin != "" && server.OriginAllowed(origin, c.AllowedOrigins) {
		return true
	}
	logging.SecurityEvent("websocket_origin_rejected", "websocket", "origin", origin)
	return false
}

// authorize returns why the handshake is refused, or "".
func (c WebSocketSecurityConfig) authorize(r *http.Request) string {
	switch {
	case !c.RequireAuth:
		return ""
	case !c.Auth.Enabled:
		return "authentication required but no API key configured"
	}
	return c.Auth.check(r, true)
}

// handleWebSocket upgrades /ws connections and attaches them to the hub.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	cfg := s.cfg.WebSocket
	if reason := cfg.authorize(r); reason != "" {
		logging.SecurityEvent("unauthorized_request", "websocket",
			"client_ip", clientIP(r),
			"reason", reason)
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized: "+reason)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     cfg.originOK,
	}
	// Upgrade writes its own error response.
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(cfg.MaxMessageSize)

	client := &Client{
		hub:     s.hub,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		limiter: newMessageBucket(cfg.MaxMessageRate),
	}
	if !s.hub.add(client) {
		conn.Close()
		return
	}
	go client.writePump()
	go client.readPump()
}
