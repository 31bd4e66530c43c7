package initializer

import (
	"io"
	"log/slog"
	"os"

	"github.com/amirasaad/fxchat/pkg/config"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// levelStyle is the badge and colour used for one log level.
type levelStyle struct {
	badge string
	color lipgloss.AdaptiveColor
}

var levelStyles = map[log.Level]levelStyle{
	log.ErrorLevel: {badge: "❌", color: lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF6B6B"}},
	log.WarnLevel:  {badge: "⚠️", color: lipgloss.AdaptiveColor{Light: "#EE6FF8", Dark: "#EE6FF8"}},
	log.InfoLevel:  {badge: "ℹ️", color: lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}},
	log.DebugLevel: {badge: "🐛", color: lipgloss.AdaptiveColor{Light: "#7E57C2", Dark: "#7E57C2"}},
}

// keyColor highlights structured keys that show up on most log lines.
var keyColor = map[string]lipgloss.AdaptiveColor{
	"error":     levelStyles[log.ErrorLevel].color,
	"component": levelStyles[log.InfoLevel].color,
	"provider":  levelStyles[log.InfoLevel].color,
	"code":      levelStyles[log.WarnLevel].color,
	"prefix":    levelStyles[log.DebugLevel].color,
	"caller":    levelStyles[log.DebugLevel].color,
	"time":      levelStyles[log.DebugLevel].color,
}

func logStyles() *log.Styles {
	styles := log.DefaultStyles()
	for level, s := range levelStyles {
		styles.Levels[level] = lipgloss.NewStyle().
			SetString(s.badge).
			Bold(true).
			Padding(0, 1).
			Foreground(s.color)
	}
	for key, color := range keyColor {
		styles.Keys[key] = lipgloss.NewStyle().Foreground(color)
		styles.Values[key] = lipgloss.NewStyle().Bold(true)
	}
	return styles
}

func setupLogger(cfg *config.Log) *slog.Logger {
	return newLogger(os.Stdout, cfg)
}

// newLogger builds a charmbracelet handler writing to w and installs it as
// the slog default.
func newLogger(w io.Writer, cfg *config.Log) *slog.Logger {
	formatters := map[string]log.Formatter{
		"json":   log.JSONFormatter,
		"text":   log.TextFormatter,
		"logfmt": log.LogfmtFormatter,
	}
	formatter := log.TextFormatter
	if f, ok := formatters[cfg.Format]; ok {
		formatter = f
	}

	handler := log.NewWithOptions(w, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           log.Level(cfg.Level),
		Prefix:          cfg.Prefix,
		Formatter:       formatter,
	})
	handler.SetStyles(logStyles())

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
