package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestValidate_ClampsValues(t *testing.T) {
	c := &Config{
		LogLevel:             "LOUD",
		Driver:               " Display ",
		Screen:               -2,
		CaptureTimeoutMs:     0,
		PollIntervalMs:       -1,
		RetryCount:           -4,
		DelayMs:              0,
		StatsIntervalSeconds: -1,
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if c.LogLevel != "info" || c.Driver != "display" || c.Screen != 0 {
		t.Fatalf("strings not normalised: %+v", c)
	}
	if c.CaptureTimeout() != time.Second || c.PollInterval() != 16*time.Millisecond || c.Delay() != 100*time.Millisecond {
		t.Fatalf("durations not clamped: %+v", c)
	}
	if c.RetryCount != 0 || c.StatsInterval() != 0 {
		t.Fatalf("counts not clamped: %+v", c)
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	c := DefaultConfig()
	c.Driver = "dxgi"
	if err := c.Validate(); err == nil {
		t.Fatal("expected an error for an unknown driver")
	}
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deskdup.yaml")
	if err := os.WriteFile(path, []byte("retry_count: 2\ndelay_ms: 40\nallow_skips: false\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DESKDUP_DELAY_MS", "250")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RetryCount != 2 || cfg.AllowSkips {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.DelayMs != 250 {
		t.Fatalf("environment should override the file, got delay_ms=%d", cfg.DelayMs)
	}
	if !cfg.ClearBacklog {
		t.Fatal("unset keys keep their defaults")
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deskdup.json")
	c := DefaultConfig()
	c.Screen = 1
	c.OnlyChanged = true
	if err := c.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != *c {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, c)
	}
}

func TestReloadHandler(t *testing.T) {
	v := NewViper()
	var applied []*Config
	h := reloadHandler(v, nil, func(c *Config) { applied = append(applied, c) })

	v.Set("log_level", "debug")
	h(fsnotify.Event{Name: "deskdup.yaml", Op: fsnotify.Write})
	if len(applied) != 1 || applied[0].LogLevel != "debug" {
		t.Fatalf("expected one reload with level debug, got %+v", applied)
	}

	h(fsnotify.Event{Name: "deskdup.yaml", Op: fsnotify.Chmod})
	if len(applied) != 1 {
		t.Fatal("chmod events must not reload")
	}

	v.Set("driver", "bogus")
	h(fsnotify.Event{Name: "deskdup.yaml", Op: fsnotify.Write})
	if len(applied) != 1 {
		t.Fatal("invalid config must not be applied")
	}
}
