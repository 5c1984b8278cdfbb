// Package logging wraps log/slog with a process-wide logger and the named
// events the search service emits (index lifecycle, corpus loads, queries,
// websocket and security events).
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ContextKey types values this package stores in a context.
type ContextKey string

// RequestIDKey holds the request ID set by RequestIDMiddleware.
const RequestIDKey ContextKey = "request_id"

// Level is a log level. The values are slog's.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Format selects the handler InitLogger installs.
type Format int

const (
	FormatJSON Format = iota
	FormatText
)

var (
	current atomic.Pointer[slog.Logger]

	outMu  sync.Mutex
	output io.Writer = os.Stdout
)

func init() {
	InitLogger(LevelInfo, FormatJSON)
}

// ParseLevel parses "debug", "info", "warn"/"warning" or "error". An empty
// string is info.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// ParseFormat parses "json" or "text". An empty string is json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "text":
		return FormatText, nil
	}
	return FormatJSON, fmt.Errorf("unknown log format %q", s)
}

// SetOutput changes the destination used by subsequent InitLogger calls.
// The CLI and the MCP stdio server point it at stderr.
func SetOutput(w io.Writer) {
	outMu.Lock()
	output = w
	outMu.Unlock()
}

// InitLogger replaces the process logger and slog's default.
func InitLogger(level Level, format Format) {
	outMu.Lock()
	w := output
	outMu.Unlock()

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}
	var h slog.Handler = slog.NewJSONHandler(w, opts)
	if format == FormatText {
		h = slog.NewTextHandler(w, opts)
	}
	l := slog.New(h)
	setLogger(l)
	slog.SetDefault(l)
}

// GetLogger returns the process logger.
func GetLogger() *slog.Logger { return current.Load() }

func setLogger(l *slog.Logger) { current.Store(l) }

// WithRequestID returns ctx carrying requestID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID returns the request ID in ctx, or "".
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// LoggerFromContext returns the process logger with ctx's request ID attached.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	l := GetLogger()
	if id := GetRequestID(ctx); id != "" {
		return l.With("request_id", id)
	}
	return l
}

func Debug(msg string, args ...any) { GetLogger().Debug(msg, args...) }
func Info(msg string, args ...any)  { GetLogger().Info(msg, args...) }
func Warn(msg string, args ...any)  { GetLogger().Warn(msg, args...) }
func Error(msg string, args ...any) { GetLogger().Error(msg, args...) }

func DebugContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).Debug(msg, args...)
}

func InfoContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).Info(msg, args...)
}

func WarnContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).Warn(msg, args...)
}

func ErrorContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).Error(msg, args...)
}

// emit logs a named event: fixed attributes first, then the caller's.
func emit(l *slog.Logger, level Level, name string, fixed []any, extra []any) {
	l.Log(context.Background(), level, name, append(fixed, extra...)...)
}

// HTTPRequestContext is the access log line written by LoggingMiddleware.
func HTTPRequestContext(ctx context.Context, method, path, remoteAddr string, statusCode int, duration time.Duration, args ...any) {
	emit(LoggerFromContext(ctx), LevelInfo, "http_request", []any{
		"method", method,
		"path", path,
		"remote_addr", remoteAddr,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
	}, args)
}

// IndexEvent logs an index lifecycle event (build, clear, rebuild). A
// non-nil err is logged at error level.
func IndexEvent(event string, err error, args ...any) {
	if err != nil {
		emit(GetLogger(), LevelError, "index_event", []any{"event", event}, append(args, "error", err.Error()))
		return
	}
	emit(GetLogger(), LevelInfo, "index_event", []any{"event", event}, args)
}

// CorpusLoad logs a completed corpus load.
func CorpusLoad(source string, books, verses int, duration time.Duration, args ...any) {
	emit(GetLogger(), LevelInfo, "corpus_load", []any{
		"source", source,
		"books", books,
		"verses", verses,
		"duration_ms", duration.Milliseconds(),
	}, args)
}

// SearchQuery logs an executed query at debug level.
func SearchQuery(ctx context.Context, query string, total int, duration time.Duration, args ...any) {
	emit(LoggerFromContext(ctx), LevelDebug, "search_query", []any{
		"query", query,
		"total", total,
		"duration_ms", duration.Milliseconds(),
	}, args)
}

func WebSocketEvent(event string, clientCount int, args ...any) {
	emit(GetLogger(), LevelInfo, "websocket_event", []any{"event", event, "client_count", clientCount}, args)
}

func ServerStartup(serverType, protocol string, port int, args ...any) {
	emit(GetLogger(), LevelInfo, "server_startup", []any{
		"server_type", serverType,
		"protocol", protocol,
		"port", port,
	}, args)
}

// SecurityEvent logs at warn level so it survives a quiet CLI.
func SecurityEvent(event, component string, args ...any) {
	emit(GetLogger(), LevelWarn, "security_event", []any{"event", event, "component", component}, args)
}
