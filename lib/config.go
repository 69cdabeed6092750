package lib

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultControlAddr = "127.0.0.1:9333"
	DefaultTextLimit   = 30
)

// Config is the inspector configuration file.
type Config struct {
	FrameInterval   time.Duration `yaml:"frame_interval"`
	Flash           time.Duration `yaml:"flash"`
	Gap             float64       `yaml:"gap"`
	TooltipHeight   float64       `yaml:"tooltip_height"`
	PanelWidth      float64       `yaml:"panel_width"`
	PanelHeight     float64       `yaml:"panel_height"`
	OverlapAttempts int           `yaml:"overlap_attempts"`
	OverlapSpacing  float64       `yaml:"overlap_spacing"`
	TextLimit       int           `yaml:"text_limit"`
	HighlightColor  string        `yaml:"highlight_color"`
	Shortcut        string        `yaml:"shortcut"`
	LogLevel        string        `yaml:"log_level"` // debug | info | warn | error
	Control         ControlConfig `yaml:"control"`
}

type ControlConfig struct {
	Addr string `yaml:"addr"`
}

// Defaults holds the value of every key a config file leaves unset. The
// session fills a zero Config from the same table.
var Defaults = Config{
	FrameInterval:   16 * time.Millisecond,
	Flash:           500 * time.Millisecond,
	Gap:             5,
	TooltipHeight:   200,
	PanelWidth:      300,
	PanelHeight:     250,
	OverlapAttempts: 10,
	OverlapSpacing:  10,
	TextLimit:       DefaultTextLimit,
	HighlightColor:  "#4ade80",
	Shortcut:        "ctrl+shift+c",
	LogLevel:        "info",
	Control:         ControlConfig{Addr: DefaultControlAddr},
}

func (c *Config) applyDefaults() {
	d := Defaults
	if c.FrameInterval <= 0 {
		c.FrameInterval = d.FrameInterval
	}
	if c.Flash <= 0 {
		c.Flash = d.Flash
	}
	if c.Gap <= 0 {
		c.Gap = d.Gap
	}
	if c.TooltipHeight <= 0 {
		c.TooltipHeight = d.TooltipHeight
	}
	if c.PanelWidth <= 0 {
		c.PanelWidth = d.PanelWidth
	}
	if c.PanelHeight <= 0 {
		c.PanelHeight = d.PanelHeight
	}
	if c.OverlapAttempts <= 0 {
		c.OverlapAttempts = d.OverlapAttempts
	}
	if c.OverlapSpacing <= 0 {
		c.OverlapSpacing = d.OverlapSpacing
	}
	if c.TextLimit <= 0 {
		c.TextLimit = d.TextLimit
	}
	if c.HighlightColor == "" {
		c.HighlightColor = d.HighlightColor
	}
	if c.Shortcut == "" {
		c.Shortcut = d.Shortcut
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.Control.Addr == "" {
		c.Control.Addr = d.Control.Addr
	}
}

// Level parses LogLevel, falling back to info.
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// DefaultConfigPath is $XDG_CONFIG_HOME/inspector/config.yaml.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "inspector", "config.yaml")
}

// LoadConfig reads a YAML config file. A missing file at the default path is
// not an error, a missing explicit path is.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, err
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return nil, err
		}
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadEnv loads .env from the working directory when present. Variables
// already set in the environment win.
func LoadEnv() error {
	err := godotenv.Load()
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// ControlAddr resolves the control API address: flag, then INSPECTOR_ADDR,
// then the default.
func ControlAddr(flag string) string {
	if addr := strings.TrimSpace(flag); addr != "" {
		return addr
	}
	if addr := strings.TrimSpace(os.Getenv("INSPECTOR_ADDR")); addr != "" {
		return addr
	}
	return DefaultControlAddr
}
