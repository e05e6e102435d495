package cmd

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/rnwolfe/cram/internal/config"
)

// configTestEnv points the XDG directories at a temp dir for the test.
func configTestEnv(t *testing.T) {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir+"/config")
	t.Setenv("XDG_DATA_HOME", tmpDir+"/data")
	t.Setenv("XDG_CACHE_HOME", tmpDir+"/cache")
	t.Setenv("XDG_STATE_HOME", tmpDir+"/state")
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	os.Stdout = w
	defer func() {
		os.Stdout = old
		r.Close()
	}()

	fn()

	w.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("io.Copy: %v", err)
	}
	return buf.String()
}

func TestRunConfigGet_KnownKey(t *testing.T) {
	configTestEnv(t)

	cfg := &config.Config{}
	cfg.User.Name = "Sam"
	if err := config.Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out := captureStdout(t, func() {
		if err := runConfigGet(nil, []string{"user.name"}); err != nil {
			t.Errorf("runConfigGet: %v", err)
		}
	})

	if !strings.Contains(out, "Sam") {
		t.Fatalf("expected 'Sam' in output, got: %q", out)
	}
}

func TestRunConfigGet_UnknownKey(t *testing.T) {
	configTestEnv(t)

	err := runConfigGet(nil, []string{"not.a.real.key"})
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown config key") {
		t.Errorf("expected 'unknown config key' in error, got: %v", err)
	}
	// Error should include the valid keys.
	if !strings.Contains(err.Error(), "user.name") {
		t.Errorf("expected valid keys in error, got: %v", err)
	}
}

func TestRunConfigSet_WeightKey(t *testing.T) {
	configTestEnv(t)

	_ = captureStdout(t, func() {
		if err := runConfigSet(nil, []string{"scoring.default_quiz", "12.5"}); err != nil {
			t.Fatalf("runConfigSet: %v", err)
		}
	})

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scoring.DefaultQuiz == nil || *cfg.Scoring.DefaultQuiz != 12.5 {
		t.Errorf("DefaultQuiz = %v, want 12.5", cfg.Scoring.DefaultQuiz)
	}
}

func TestRunConfigSet_WeightOutOfRange(t *testing.T) {
	configTestEnv(t)

	if err := runConfigSet(nil, []string{"scoring.default_quiz", "150"}); err == nil {
		t.Fatal("expected error for out-of-range weight")
	}
	if err := runConfigSet(nil, []string{"scoring.default_quiz", "lots"}); err == nil {
		t.Fatal("expected error for non-numeric weight")
	}
}

func TestRunConfigSet_WatchInterval(t *testing.T) {
	configTestEnv(t)

	_ = captureStdout(t, func() {
		if err := runConfigSet(nil, []string{"rank.watch_interval", "90s"}); err != nil {
			t.Fatalf("runConfigSet: %v", err)
		}
	})

	cfg, _ := config.Load()
	if got := cfg.WatchInterval().String(); got != "1m30s" {
		t.Errorf("WatchInterval = %s, want 1m30s", got)
	}

	if err := runConfigSet(nil, []string{"rank.watch_interval", "soonish"}); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestRunConfigUnset(t *testing.T) {
	configTestEnv(t)

	_ = captureStdout(t, func() {
		if err := runConfigSet(nil, []string{"scoring.default_final", "55"}); err != nil {
			t.Fatalf("runConfigSet: %v", err)
		}
		if err := runConfigUnset(nil, []string{"scoring.default_final"}); err != nil {
			t.Fatalf("runConfigUnset: %v", err)
		}
	})

	cfg, _ := config.Load()
	if cfg.Scoring.DefaultFinal != nil {
		t.Errorf("DefaultFinal = %v, want nil after unset", *cfg.Scoring.DefaultFinal)
	}
}

func TestRunConfigList_ShowsKeys(t *testing.T) {
	configTestEnv(t)

	out := captureStdout(t, func() {
		if err := runConfigList(nil, nil); err != nil {
			t.Fatalf("runConfigList: %v", err)
		}
	})

	for _, key := range []string{"user.name", "scoring.default_quiz", "rank.watch_interval"} {
		if !strings.Contains(out, key) {
			t.Errorf("expected %q in list output", key)
		}
	}
}
