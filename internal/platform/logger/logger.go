// Package logger は slog のJSONロガーを設定から組み立てます。
package logger

import (
	"io"
	"log/slog"
	"strings"

	"yieldcurve_backend/internal/platform/config"
)

// New は w に JSON で出力するロガーを返します。
func New(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}))
}

// ParseLevel はログレベル名を slog.Level に変換します。不明な値は Info です。
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
