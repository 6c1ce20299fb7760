package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/Krimson/sportscan/internal/config"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		log, err := New(config.LogConfig{Level: tt.level, Encoding: "console"})
		if err != nil {
			t.Fatalf("New(%q) failed: %v", tt.level, err)
		}
		if !log.Core().Enabled(tt.want) {
			t.Errorf("Expected level %s enabled for %q", tt.want, tt.level)
		}
		if tt.want > zapcore.DebugLevel && log.Core().Enabled(tt.want-1) {
			t.Errorf("Expected level below %s disabled for %q", tt.want, tt.level)
		}
	}
}
