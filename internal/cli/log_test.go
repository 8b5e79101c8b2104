package cli

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
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("scan") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("frame") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("frame") }, true},
		{"warn at info level", log.InfoLevel, func(l *log.Logger) { l.Warn("violation") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))

			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)

	c.Logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug logged at info level: %q", buf.String())
	}

	c.SetLogLevel(LogDebug)
	c.Logger.Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("output = %q, want debug line after SetLogLevel", buf.String())
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	prog.done("Indexed %d files in %s", 3, "100%vault")

	out := buf.String()
	if !strings.Contains(out, "Indexed 3 files in 100%vault") {
		t.Errorf("output = %q, want message", out)
	}
	if !strings.Contains(out, "ms)") && !strings.Contains(out, "s)") {
		t.Errorf("output = %q, want elapsed time", out)
	}
}

func TestLoggerContext(t *testing.T) {
	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)

	ctx := withLogger(context.Background(), custom)
	if got := loggerFromContext(ctx); got != custom {
		t.Error("loggerFromContext should return the attached logger")
	}
	loggerFromContext(ctx).Info("watching")
	if buf.Len() == 0 {
		t.Error("attached logger should write to its buffer")
	}

	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("loggerFromContext should fall back to log.Default()")
	}

	//nolint:staticcheck // nil context
	if got := loggerFromContext(withLogger(nil, custom)); got != custom {
		t.Error("withLogger(nil, ...) should still attach the logger")
	}
}
