package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		enabled zapcore.Level
		wantErr bool
	}{
		{name: "default level", level: "", format: "console", enabled: zapcore.WarnLevel},
		{name: "debug json", level: "debug", format: "json", enabled: zapcore.DebugLevel},
		{name: "invalid level", level: "loud", format: "console", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.level, tt.format)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !log.Core().Enabled(tt.enabled) {
				t.Errorf("expected level %s to be enabled", tt.enabled)
			}
			if tt.enabled > zapcore.DebugLevel && log.Core().Enabled(tt.enabled-1) {
				t.Errorf("expected level below %s to be disabled", tt.enabled)
			}
		})
	}
}
