package tui

import (
	"io"

	"github.com/Digital-Shane/season-tidy/internal/tui/theme"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// TimeFormat is the timestamp layout of every log line.
const TimeFormat = "2006-01-02 15:04:05"

// NewLogger builds the application logger writing to w.
func NewLogger(w io.Writer, level log.Level, th theme.Theme) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      TimeFormat,
		Level:           level,
	})
	ConfigureLoggerStyles(logger, th)
	return logger
}

// ConfigureLoggerStyles applies the theme colors to the level labels.
func ConfigureLoggerStyles(logger *log.Logger, th theme.Theme) {
	if logger == nil {
		return
	}
	colors := th.Colors()
	styles := log.DefaultStyles()

	styles.Levels[log.DebugLevel] = lipgloss.NewStyle().
		SetString("DEBUG").
		Bold(true).
		Foreground(colors.Muted)

	styles.Levels[log.InfoLevel] = lipgloss.NewStyle().
		SetString("INFO ").
		Bold(true).
		Foreground(colors.Success)

	styles.Levels[log.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN ").
		Bold(true).
		Foreground(colors.Warning)

	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR").
		Bold(true).
		Foreground(colors.Error)

	styles.Levels[log.FatalLevel] = lipgloss.NewStyle().
		SetString("FATAL").
		Bold(true).
		Background(colors.Error).
		Foreground(colors.Background)

	logger.SetStyles(styles)
}
