package lib

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(NewLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestLoggerFromContext(t *testing.T) {
	if LoggerFrom(context.Background()) == nil {
		t.Fatal("LoggerFrom should fall back to the default logger")
	}

	var buf bytes.Buffer
	custom := NewLogger(&buf, log.InfoLevel)
	ctx := WithLogger(context.Background(), custom)
	if LoggerFrom(ctx) != custom {
		t.Fatal("LoggerFrom should return the attached logger")
	}
	LoggerFrom(ctx).Info("pinned", "panel", "abc")
	if !strings.Contains(buf.String(), "pinned") {
		t.Errorf("custom logger output missing message: %q", buf.String())
	}
}
