package cli

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		emit  func(*log.Logger)
		want  bool
	}{
		{"info at info", log.InfoLevel, func(l *log.Logger) { l.Info("assembled chain") }, true},
		{"debug at info", log.InfoLevel, func(l *log.Logger) { l.Debug("resolved optical constants") }, false},
		{"debug at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("resolved optical constants") }, true},
		{"warn at info", log.InfoLevel, func(l *log.Logger) { l.Warn("report cache unavailable") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("wrote output = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewLoggerKeyValues(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, log.InfoLevel).Info("computed report", "energy", 10300, "transmission", 0.42)

	out := buf.String()
	for _, want := range []string{"computed report", "energy=10300", "transmission=0.42"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `).MatchString(out) {
		t.Errorf("output %q does not start with a HH:MM:SS.ms timestamp", out)
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("Swept 3 energies")

	out := buf.String()
	if !strings.Contains(out, "Swept 3 energies (") {
		t.Errorf("output %q missing message with duration", out)
	}
	if !regexp.MustCompile(`\(\d+(\.\d+)?(ns|µs|ms|s)\)`).MatchString(out) {
		t.Errorf("output %q has no rounded duration", out)
	}
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)

	tests := []struct {
		name string
		ctx  context.Context
		want *log.Logger
	}{
		{"attached", withLogger(context.Background(), custom), custom},
		{"missing", context.Background(), log.Default()},
		{"nil context", nil, log.Default()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := loggerFromContext(tt.ctx); got != tt.want {
				t.Errorf("loggerFromContext() = %p, want %p", got, tt.want)
			}
		})
	}
}
