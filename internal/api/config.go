package api

import "time"

// Config holds server configuration.
type Config struct {
	Port              int
	AllowedOrigins    []string   // CORS and websocket origins (empty = allow all)
	RateLimitRequests int        // Requests per minute (0 = disabled)
	RateLimitBurst    int        // Burst size
	Auth              AuthConfig // API key for mutating endpoints
	WebSocket         WebSocketSecurityConfig
	ShutdownTimeout   time.Duration
}

// DefaultConfig returns a Config listening on 8080 with rate limiting off.
func DefaultConfig() Config {
	return Config{
		Port:            8080,
		WebSocket:       DefaultWebSocketSecurityConfig(),
		ShutdownTimeout: 10 * time.Second,
	}
}
