package logs

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_FanOut(t *testing.T) {
	var text, js bytes.Buffer
	level := new(slog.LevelVar)
	logger := New(Options{Writer: &text, JSON: &js, Level: level})

	logger.Info("mounted", "component", "Counter")
	logger.Debug("hidden")

	if !strings.Contains(text.String(), "component=Counter") {
		t.Errorf("text output = %q", text.String())
	}
	if !strings.Contains(js.String(), `"component":"Counter"`) {
		t.Errorf("json output = %q", js.String())
	}
	if strings.Contains(text.String(), "hidden") {
		t.Error("debug record should be filtered at info level")
	}

	level.Set(slog.LevelDebug)
	logger.Debug("visible")
	if !strings.Contains(text.String(), "visible") {
		t.Error("debug record should pass after lowering the level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"WARN", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLevel(%q) = (%v, %v), want (%v, err=%v)", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestDiscard(t *testing.T) {
	Discard().Error("dropped")
}
