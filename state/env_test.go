package state

import (
	"context"
	"log"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"legacss/config"
)

func TestEnvFromContext(t *testing.T) {
	ctx := ContextWithEnv(context.Background())
	env := EnvFromContext(ctx)
	if env == nil {
		t.Fatal("EnvFromContext() returned nil")
	}
	if env.start.IsZero() {
		t.Error("Environment start time not set")
	}
	if EnvFromContext(ctx) != env {
		t.Error("Expected the same environment on every call")
	}
}

func TestEnvFromContext_Missing(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic when env not in context")
		}
	}()
	EnvFromContext(context.Background())
}

func TestLocalEnv_Uptime(t *testing.T) {
	env := &LocalEnv{start: time.Now().Add(-time.Second)}
	if uptime := env.Uptime(); uptime < time.Second {
		t.Errorf("Uptime() = %v, expected at least 1s", uptime)
	}
}

func TestLocalEnv_ProcessingOptions(t *testing.T) {
	tests := []struct {
		name     string
		enable   bool
		noColors bool
		want     bool
	}{
		{"enabled", true, false, true},
		{"disabled in config", false, false, false},
		{"disabled by flag", true, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := &LocalEnv{
				Cfg:      &config.Config{Colors: config.ColorsConfig{Enable: tt.enable}},
				NoColors: tt.noColors,
			}
			if got := env.ProcessingOptions().Colors; got != tt.want {
				t.Errorf("Colors = %v, want %v", got, tt.want)
			}
		})
	}

	if (&LocalEnv{}).ProcessingOptions().Colors {
		t.Error("Expected colors to be off without configuration")
	}
}

func TestLocalEnv_RedirectStdLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	env := &LocalEnv{Log: zap.New(core)}

	env.RedirectStdLog()
	log.Print("from standard logger")
	env.RestoreStdLog()
	log.Print("not captured")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 captured entry, got %d", len(entries))
	}
	if entries[0].Message != "from standard logger" {
		t.Errorf("unexpected message %q", entries[0].Message)
	}
}

func TestLocalEnv_RedirectStdLogNoLogger(t *testing.T) {
	env := &LocalEnv{}
	env.RedirectStdLog()
	if env.restoreStdLog != nil {
		t.Error("Expected restoreStdLog to remain nil")
	}
	// should not panic
	env.RestoreStdLog()
}

func TestLocalEnv_RedirectAndRestore(t *testing.T) {
	env := &LocalEnv{
		Log: zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1))),
	}
	for i := range 3 {
		env.RedirectStdLog()
		if env.restoreStdLog == nil {
			t.Errorf("Iteration %d: restoreStdLog not set", i)
		}
		env.RestoreStdLog()
	}
}
