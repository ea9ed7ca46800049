package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

type View string

const (
	ViewCities    View = "cities"
	ViewAnalytics View = "analytics"
)

type Config struct {
	APIBaseURL string `yaml:"api_base_url"`
	TimeoutSec int    `yaml:"timeout_sec"`
	RefreshSec int    `yaml:"refresh_sec"`
	View       View   `yaml:"view"`
	Theme      Theme  `yaml:"theme"`

	Filter  string `yaml:"filter"`
	SortKey string `yaml:"sort"`
	SortDir string `yaml:"sort_dir"`
	Where   string `yaml:"where"`

	Offline          bool   `yaml:"offline"`
	OpenAIModel      string `yaml:"openai_model"`
	OpenAIBase       string `yaml:"openai_base_url"`
	OpenAITimeoutSec int    `yaml:"openai_timeout_sec"`

	RequestsFile string `yaml:"requests_file"`
	UseStdin     bool   `yaml:"stdin"`
	Demo         bool   `yaml:"demo"`
	Follow       bool   `yaml:"follow"`
	MaxBuffer    int    `yaml:"max_buffer"`
	BlockSizeMB  int    `yaml:"block_size_mb"`
	LogFormat    string `yaml:"log_format"`

	ExportFormat string `yaml:"-"`
	ExportOut    string `yaml:"-"`
	ExportChart  string `yaml:"-"`
	ShowVersion  bool   `yaml:"-"`
	ConfigPath   string `yaml:"-"`

	// Internal
	IsPipedStdin bool `yaml:"-"`
}

func defaults() *Config {
	return &Config{
		APIBaseURL:       "http://localhost:8080/api",
		TimeoutSec:       10,
		View:             ViewCities,
		Theme:            ThemeDark,
		OpenAIModel:      "gpt-4o-mini",
		OpenAITimeoutSec: 60,
		MaxBuffer:        10000,
	}
}

// Load reads configuration from os.Args. Precedence: flags, then AQDASH_*
// environment variables, then the YAML file, then defaults.
func Load() (*Config, error) {
	cfg, err := Parse(os.Args[1:], os.Stderr)
	if err != nil {
		return nil, err
	}
	// Detect if stdin is piped
	if fi, err := os.Stdin.Stat(); err == nil {
		cfg.IsPipedStdin = (fi.Mode() & os.ModeCharDevice) == 0
	}
	if cfg.IsPipedStdin && cfg.RequestsFile == "" && !cfg.Demo && cfg.ExportFormat == "" && cfg.ExportChart == "" {
		cfg.UseStdin = true
	}
	return cfg, nil
}

// Parse builds a Config from args without touching stdin.
func Parse(args []string, errOut io.Writer) (*Config, error) {
	cfg := defaults()

	path := getenvDefault("AQDASH_CONFIG", "")
	if p, ok := lookupFlag(args, "config"); ok {
		path = p
	}
	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		cfg.ConfigPath = path
	}

	fs := flag.NewFlagSet("aqdash", flag.ContinueOnError)
	fs.SetOutput(errOut)

	fs.StringVar(&cfg.ConfigPath, "config", cfg.ConfigPath, "YAML config file (env AQDASH_CONFIG)")
	fs.StringVar(&cfg.APIBaseURL, "api-base-url", getenvDefault("AQDASH_API_BASE_URL", cfg.APIBaseURL), "REST backend base URL")
	fs.IntVar(&cfg.TimeoutSec, "timeout-sec", getenvDefaultInt("AQDASH_TIMEOUT_SEC", cfg.TimeoutSec), "HTTP request timeout in seconds")
	fs.IntVar(&cfg.RefreshSec, "refresh-sec", getenvDefaultInt("AQDASH_REFRESH_SEC", cfg.RefreshSec), "auto-refresh interval in seconds (0=off)")
	view := string(cfg.View)
	fs.StringVar(&view, "view", getenvDefault("AQDASH_VIEW", view), "initial view: cities|analytics")
	theme := string(cfg.Theme)
	fs.StringVar(&theme, "theme", getenvDefault("AQDASH_THEME", theme), "theme: dark|light")
	fs.StringVar(&cfg.Filter, "filter", cfg.Filter, "initial free-text filter")
	fs.StringVar(&cfg.SortKey, "sort", cfg.SortKey, "initial sort column key")
	fs.StringVar(&cfg.SortDir, "sort-dir", cfg.SortDir, "initial sort direction: asc|desc (default: column default)")
	fs.StringVar(&cfg.Where, "where", cfg.Where, `expression filter, e.g. 'aqi > 100 && country == "IN"'`)
	fs.BoolVar(&cfg.Offline, "offline", cfg.Offline, "disable OpenAI fallback")
	fs.StringVar(&cfg.OpenAIModel, "openai-model", getenvDefault("AQDASH_OPENAI_MODEL", cfg.OpenAIModel), "OpenAI model")
	fs.StringVar(&cfg.OpenAIBase, "openai-base-url", getenvDefault("AQDASH_OPENAI_BASE_URL", cfg.OpenAIBase), "OpenAI base URL override")
	fs.IntVar(&cfg.OpenAITimeoutSec, "openai-timeout-sec", getenvDefaultInt("AQDASH_OPENAI_TIMEOUT_SEC", cfg.OpenAITimeoutSec), "OpenAI request timeout in seconds")
	fs.StringVar(&cfg.RequestsFile, "requests-file", cfg.RequestsFile, "read the analytics timeline from a local request log instead of the backend")
	fs.BoolVar(&cfg.UseStdin, "stdin", cfg.UseStdin, "read the request log from stdin (default: auto if piped)")
	fs.BoolVar(&cfg.Demo, "demo", cfg.Demo, "feed the analytics view with synthetic requests")
	fs.BoolVar(&cfg.Follow, "follow", cfg.Follow, "follow the request log (tail -f)")
	fs.IntVar(&cfg.MaxBuffer, "max-buffer", cfg.MaxBuffer, "request log rows kept in memory")
	fs.IntVar(&cfg.BlockSizeMB, "block-size-mb", cfg.BlockSizeMB, "read only the last N MB of the request log (0=all)")
	fs.StringVar(&cfg.LogFormat, "format", cfg.LogFormat, "force request log format: json|logfmt|apache")
	fs.StringVar(&cfg.ExportFormat, "export", "", "export the projected table and exit: csv|json")
	fs.StringVar(&cfg.ExportOut, "out", "", "output path for --export (- for stdout)")
	fs.StringVar(&cfg.ExportChart, "export-chart", "", "write the view's main chart as PNG and exit")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.View = View(strings.ToLower(view))
	cfg.Theme = Theme(strings.ToLower(theme))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.View {
	case ViewCities, ViewAnalytics:
	default:
		return fmt.Errorf("unknown view %q (want cities or analytics)", c.View)
	}
	switch c.Theme {
	case ThemeDark, ThemeLight:
	default:
		return fmt.Errorf("unknown theme %q (want dark or light)", c.Theme)
	}
	if c.ExportFormat != "" && c.ExportOut == "" {
		return errors.New("--export requires --out path")
	}
	if c.TimeoutSec <= 0 {
		c.TimeoutSec = 10
	}
	if c.MaxBuffer < 100 {
		c.MaxBuffer = 100
	}
	return nil
}

// loadFile overlays the YAML file at path onto cfg.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// lookupFlag finds -name/--name value or -name=value in args without parsing
// the rest.
func lookupFlag(args []string, name string) (string, bool) {
	for i, a := range args {
		if a == "--" {
			break
		}
		trimmed := strings.TrimLeft(a, "-")
		if trimmed == a {
			continue
		}
		if v, ok := strings.CutPrefix(trimmed, name+"="); ok {
			return v, true
		}
		if trimmed == name && i+1 < len(args) {
			return args[i+1], true
		}
	}
	return "", false
}

func getenvDefault(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvDefaultInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func (c *Config) Timeout() time.Duration { return time.Duration(c.TimeoutSec) * time.Second }

func (c *Config) OpenAITimeout() time.Duration {
	return time.Duration(c.OpenAITimeoutSec) * time.Second
}

func (c *Config) OpenAIKey() string { return os.Getenv("OPENAI_API_KEY") }

// LocalRequests reports whether the analytics view reads a local request log.
func (c *Config) LocalRequests() bool { return c.RequestsFile != "" || c.UseStdin || c.Demo }

// Headless reports whether the run exports and exits without the TUI.
func (c *Config) Headless() bool { return c.ExportFormat != "" || c.ExportChart != "" }

func (c *Config) String() string {
	return fmt.Sprintf("api=%s view=%s theme=%s requests=%s stdin=%v demo=%v follow=%v offline=%v", c.APIBaseURL, c.View, c.Theme, c.RequestsFile, c.UseStdin, c.Demo, c.Follow, c.Offline)
}
