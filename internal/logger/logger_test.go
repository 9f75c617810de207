package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewIsNop(t *testing.T) {
	l := New()
	if l.Log == nil {
		t.Fatal("New() returned nil logger")
	}
	if l.Log.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("expected no-op logger before Init")
	}
}

func TestInit(t *testing.T) {
	cases := []struct {
		level   string
		enabled zapcore.Level
		wantErr bool
	}{
		{"Info", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"ERROR", zapcore.ErrorLevel, false},
		{"loud", 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.level, func(t *testing.T) {
			l := New()
			err := l.Init(tc.level)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Init(%q) did not fail", tc.level)
				}
				return
			}
			if err != nil {
				t.Fatalf("Init(%q) error: %v", tc.level, err)
			}
			if !l.Log.Core().Enabled(tc.enabled) {
				t.Errorf("level %v not enabled after Init(%q)", tc.enabled, tc.level)
			}
		})
	}
}
