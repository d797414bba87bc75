package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Notice struct {
	ID      string    `json:"id"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier surfaces flow outcomes to the buyer.
type Notifier interface {
	Notify(ctx context.Context, level Level, message string)
}

// NoticeFeed keeps the most recent notices until the page drains them.
type NoticeFeed struct {
	logger *slog.Logger
	limit  int

	mu    sync.Mutex
	items []Notice
}

func NewNoticeFeed(logger *slog.Logger, limit int) *NoticeFeed {
	if limit <= 0 {
		limit = 50
	}
	return &NoticeFeed{logger: logger, limit: limit}
}

func (f *NoticeFeed) Notify(ctx context.Context, level Level, message string) {
	n := Notice{
		ID:      uuid.NewString(),
		Level:   level,
		Message: message,
		At:      time.Now(),
	}

	f.logger.LogAttrs(ctx, slogLevel(level), "notice", slog.String("level", string(level)), slog.String("message", message))

	f.mu.Lock()
	f.items = append(f.items, n)
	if over := len(f.items) - f.limit; over > 0 {
		f.items = append([]Notice(nil), f.items[over:]...)
	}
	f.mu.Unlock()
}

// Drain returns pending notices oldest first and forgets them.
func (f *NoticeFeed) Drain() []Notice {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := f.items
	f.items = nil
	return items
}

func slogLevel(level Level) slog.Level {
	switch level {
	case LevelError:
		return slog.LevelError
	case LevelWarning:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
