package logger

import (
	"io"
	"log/slog"
	"os"
)

func New(env string) *slog.Logger {
	return NewWithWriter(os.Stdout, env)
}

// NewWithWriter в dev пишет текстом с уровнем debug, иначе JSON.
func NewWithWriter(w io.Writer, env string) *slog.Logger {
	level := slog.LevelInfo
	if env == "dev" {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler = slog.NewJSONHandler(w, opts)
	if env == "dev" {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h).With("service", "uwip-bot")
}

// Chat — логгер, привязанный к чату
func Chat(log *slog.Logger, chatID int64) *slog.Logger {
	return log.With("chat_id", chatID)
}
