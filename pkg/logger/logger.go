package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance
func New() *Logger {
	// Get log level from environment
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	// Create handler options
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Create handler based on environment
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		// Use text handler for development (more readable)
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		// Use JSON handler for production (structured)
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
	}
}

// WithFields adds multiple fields to logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// HTTP logging methods

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.String("user_agent", c.Request.UserAgent()),
		slog.Int("size", c.Writer.Size()),
	)
}

// Business logic logging methods

// LogTicketCreated logs when a ticket is created
func (l *Logger) LogTicketCreated(ctx context.Context, ticketID, routeID, pnr string, seatNumber int, status string) {
	l.Logger.InfoContext(ctx,
		"Ticket Created",
		slog.String("ticket_id", ticketID),
		slog.String("route_id", routeID),
		slog.String("pnr", pnr),
		slog.Int("seat_number", seatNumber),
		slog.String("status", status),
	)
}

// LogTicketTransition logs a ticket lifecycle transition
func (l *Logger) LogTicketTransition(ctx context.Context, ticketID, from, to string) {
	l.Logger.InfoContext(ctx,
		"Ticket Status Changed",
		slog.String("ticket_id", ticketID),
		slog.String("from", from),
		slog.String("to", to),
	)
}

// LogSeatConflict logs a rejected booking caused by a segment overlap
func (l *Logger) LogSeatConflict(ctx context.Context, routeID string, seatNumber, fromIndex, toIndex int) {
	l.Logger.WarnContext(ctx,
		"Seat Segment Conflict",
		slog.String("route_id", routeID),
		slog.Int("seat_number", seatNumber),
		slog.Int("from_stop_index", fromIndex),
		slog.Int("to_stop_index", toIndex),
	)
}

// LogSeatEventPublished logs a seat-update event fan-out
func (l *Logger) LogSeatEventPublished(ctx context.Context, routeID, eventType string, seatNumber, subscribers int) {
	l.Logger.DebugContext(ctx,
		"Seat Event Published",
		slog.String("route_id", routeID),
		slog.String("event_type", eventType),
		slog.Int("seat_number", seatNumber),
		slog.Int("subscribers", subscribers),
	)
}

// LogNotifyFailure logs a best-effort notification failure. Never escalated
// to the booking caller.
func (l *Logger) LogNotifyFailure(ctx context.Context, routeID, eventType string, err error) {
	l.Logger.ErrorContext(ctx,
		"Seat Event Publish Failed",
		slog.String("route_id", routeID),
		slog.String("event_type", eventType),
		slog.String("error", err.Error()),
	)
}

// LogRateLimitExceeded logs rate limit exceeded
func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.Logger.WarnContext(ctx,
		"Rate Limit Exceeded",
		slog.String("ip", ip),
		slog.String("endpoint", endpoint),
	)
}

// Helper methods for common patterns

// InfoWithContext logs an info message with context
func (l *Logger) InfoWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.InfoContext(ctx, msg, args...)
}

// ErrorWithContext logs an error message with context
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2+2)
	args = append(args, slog.String("error", err.Error()))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.ErrorContext(ctx, msg, args...)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
