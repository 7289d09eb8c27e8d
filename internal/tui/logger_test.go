package tui

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/Digital-Shane/season-tidy/internal/tui/theme"
	"github.com/charmbracelet/log"
)

var timestampRe = regexp.MustCompile(`(?m)^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} `)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, log.InfoLevel, theme.Default())

	logger.Debug("hidden")
	logger.Info("Renamed", "from", "a.mkv", "to", "b.mkv")
	logger.Warn("Skipping unknown folder", "name", "Extras")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line logged at info level:\n%s", out)
	}
	for _, want := range []string{"INFO", "Renamed", "from=a.mkv", "WARN", "name=Extras"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
	if !timestampRe.MatchString(out) {
		t.Errorf("log output missing %q timestamps:\n%s", TimeFormat, out)
	}
}

func TestConfigureLoggerStylesNil(t *testing.T) {
	ConfigureLoggerStyles(nil, theme.Default())
}
