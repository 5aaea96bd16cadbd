package state

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"famchron/config"
)

func testLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
}

func TestContextWithEnv(t *testing.T) {
	env := EnvFromContext(ContextWithEnv(context.Background()))
	if env == nil {
		t.Fatal("EnvFromContext() returned nil")
	}
	if env.start.IsZero() {
		t.Error("start time not set")
	}
	id, err := uuid.Parse(env.RunID)
	if err != nil {
		t.Fatalf("RunID %q is not an uuid: %v", env.RunID, err)
	}
	if id.Version() != 7 {
		t.Errorf("RunID version = %d, want 7", id.Version())
	}
}

func TestRunIDsDiffer(t *testing.T) {
	a := EnvFromContext(ContextWithEnv(context.Background()))
	b := EnvFromContext(ContextWithEnv(context.Background()))
	if a.RunID == b.RunID {
		t.Errorf("two environments share run id %s", a.RunID)
	}
	if a.RunID > b.RunID {
		t.Errorf("run ids are not time ordered: %s > %s", a.RunID, b.RunID)
	}
}

func TestEnvFromContextPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic when env is not in context")
		}
	}()
	EnvFromContext(context.Background())
}

func TestUptime(t *testing.T) {
	env := &LocalEnv{start: time.Now()}

	time.Sleep(10 * time.Millisecond)
	uptime := env.Uptime()
	if uptime < 10*time.Millisecond {
		t.Errorf("Uptime() = %v, expected at least 10ms", uptime)
	}
	if uptime > time.Second {
		t.Errorf("Uptime() = %v, unexpectedly large", uptime)
	}
}

func TestStdLogRedirection(t *testing.T) {
	tests := []struct {
		name        string
		log         *zap.Logger
		redirect    bool
		wantRestore bool
	}{
		{name: "with logger", log: testLogger(t), redirect: true, wantRestore: true},
		{name: "without logger", redirect: true},
		{name: "restore only", log: testLogger(t)},
		{name: "nothing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := &LocalEnv{Log: tt.log}
			if tt.redirect {
				env.RedirectStdLog()
			}
			if got := env.restoreStdLog != nil; got != tt.wantRestore {
				t.Errorf("restore function set = %v, want %v", got, tt.wantRestore)
			}
			// must not panic in any state
			env.RestoreStdLog()
		})
	}
}

func TestRepeatedRedirect(t *testing.T) {
	env := &LocalEnv{Log: testLogger(t)}
	for i := range 3 {
		env.RedirectStdLog()
		if env.restoreStdLog == nil {
			t.Errorf("iteration %d: restore function not set", i)
		}
		env.RestoreStdLog()
	}
}

func TestFields(t *testing.T) {
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	env := &LocalEnv{Cfg: cfg, Rpt: &config.Report{}, Log: testLogger(t), Overwrite: true}

	if env.Cfg.Report.GenerationOffset != 20 {
		t.Errorf("GenerationOffset = %d, want 20", env.Cfg.Report.GenerationOffset)
	}
	if !env.Overwrite {
		t.Error("Overwrite not set")
	}
}
