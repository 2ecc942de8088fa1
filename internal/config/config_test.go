package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(flags)
	if err := flags.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return flags
}

// isolate keeps config file discovery away from the developer's files.
func isolate(t *testing.T) {
	t.Helper()
	wd, wdErr := os.Getwd()
	if wdErr != nil {
		t.Fatal(wdErr)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", newFlags(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Interval != DefaultInterval || cfg.IntervalDuration() != 2*time.Second {
		t.Errorf("interval = %d", cfg.Interval)
	}
	if cfg.NoNetwork || cfg.Once || cfg.History.Enabled {
		t.Errorf("unexpected toggles: %+v", cfg)
	}
	if cfg.History.Dir != "logs" || cfg.DiskPath != "/" {
		t.Errorf("history dir = %q disk path = %q", cfg.History.Dir, cfg.DiskPath)
	}
	if cfg.Policy().Enabled() {
		t.Error("threshold should be unset by default")
	}
}

func TestLoadFlags(t *testing.T) {
	isolate(t)

	cfg, err := Load("", newFlags(t,
		"--interval", "5", "--no-network", "--once", "--log",
		"--log-dir", "out", "--threshold", "80", "--stop-on-threshold",
	))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Interval != 5 || !cfg.NoNetwork || !cfg.Once || !cfg.History.Enabled || cfg.History.Dir != "out" {
		t.Errorf("flags not applied: %+v", cfg)
	}
	policy := cfg.Policy()
	if policy.Limit == nil || *policy.Limit != 80 || !policy.StopOnBreach {
		t.Errorf("policy = %+v", policy)
	}
}

func TestLoadZeroThresholdIsSet(t *testing.T) {
	isolate(t)

	cfg, err := Load("", newFlags(t, "--threshold", "0"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p := cfg.Policy(); p.Limit == nil || *p.Limit != 0 {
		t.Errorf("policy = %+v, want limit 0", p)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "sysmon.yaml")
	content := "interval: 10\nhistory:\n  enabled: true\n  dir: /tmp/samples\nthreshold:\n  limit: 90\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SYSMON_INTERVAL", "7")

	cfg, err := Load(path, newFlags(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Interval != 7 {
		t.Errorf("interval = %d, want env override 7", cfg.Interval)
	}
	if !cfg.History.Enabled || cfg.History.Dir != "/tmp/samples" {
		t.Errorf("history = %+v", cfg.History)
	}
	if cfg.Threshold.Limit == nil || *cfg.Threshold.Limit != 90 {
		t.Errorf("threshold = %v", cfg.Threshold.Limit)
	}

	// flags win over the file
	cfg, err = Load(path, newFlags(t, "--interval", "1"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Interval != 1 {
		t.Errorf("interval = %d, want flag override 1", cfg.Interval)
	}
}

func TestLoadInvalid(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		args []string
	}{
		{"threshold above 100", []string{"--threshold", "150"}},
		{"negative threshold", []string{"--threshold=-1"}},
		{"negative interval", []string{"--interval=-3"}},
		{"bad log level", []string{"--log-level", "loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load("", newFlags(t, tt.args...)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), newFlags(t)); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
