package logger

import (
	"testing"

	"github.com/samvad-hq/samvad-wxoa/internal/config"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestInitSetsPackageLogger(t *testing.T) {
	log, err := Init(&config.Config{AppName: "test", LogLevel: "debug"})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if S == nil || log.SugaredLogger != S {
		t.Fatalf("package logger not set")
	}

	var _ Logger = log
	var _ Logger = &NopLogger{}
	log.DebugObj("debug entry", "payload", map[string]any{"k": "v"})
}
