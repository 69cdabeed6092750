package lib

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestLoadConfigDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("flash: 250ms\npanel_width: 320\ncontrol:\n  addr: 127.0.0.1:9000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Flash != 250*time.Millisecond || cfg.PanelWidth != 320 || cfg.Control.Addr != "127.0.0.1:9000" {
		t.Fatalf("explicit values lost: %+v", cfg)
	}
	if cfg.FrameInterval != 16*time.Millisecond || cfg.Gap != 5 || cfg.PanelHeight != 250 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.OverlapAttempts != 10 || cfg.TextLimit != 30 || cfg.Shortcut != "ctrl+shift+c" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("missing explicit config should fail")
	}

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Control.Addr != DefaultControlAddr {
		t.Fatalf("addr %q", cfg.Control.Addr)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("flash: [nope\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("invalid yaml should fail")
	}
}

func TestConfigLevel(t *testing.T) {
	for in, want := range map[string]log.Level{
		"debug": log.DebugLevel,
		"WARN":  log.WarnLevel,
		"":      log.InfoLevel,
		"loud":  log.InfoLevel,
	} {
		cfg := Config{LogLevel: in}
		if got := cfg.Level(); got != want {
			t.Errorf("Level(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestControlAddr(t *testing.T) {
	t.Setenv("INSPECTOR_ADDR", "")
	if got := ControlAddr(""); got != DefaultControlAddr {
		t.Fatalf("got %q", got)
	}
	t.Setenv("INSPECTOR_ADDR", "127.0.0.1:7000")
	if got := ControlAddr(""); got != "127.0.0.1:7000" {
		t.Fatalf("env: got %q", got)
	}
	if got := ControlAddr(" 127.0.0.1:8000 "); got != "127.0.0.1:8000" {
		t.Fatalf("flag: got %q", got)
	}
}

func TestLoadEnvMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	if err := LoadEnv(); err != nil {
		t.Fatalf("missing .env should be ignored: %v", err)
	}
}
