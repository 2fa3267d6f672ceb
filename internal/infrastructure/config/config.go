package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Shell     ShellConfig
	Terminal  TerminalConfig
	Editor    EditorConfig
	Monitor   MonitorConfig
	Browser   BrowserConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8000"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	// AllowedOrigins lists browser origins admitted by CORS and the stream
	// upgrade. "*" admits any origin.
	AllowedOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// ShellConfig holds the initial shell state.
type ShellConfig struct {
	ViewportWidth  float64  `envconfig:"PEAK_VIEWPORT_WIDTH" default:"1920"`
	ViewportHeight float64  `envconfig:"PEAK_VIEWPORT_HEIGHT" default:"1080"`
	Workspaces     int      `envconfig:"PEAK_WORKSPACES" default:"4"`
	Persona        string   `envconfig:"PEAK_PERSONA" default:"Desktop"`
	DockVisible    bool     `envconfig:"PEAK_DOCK_VISIBLE" default:"true"`
	Light          bool     `envconfig:"PEAK_LIGHT" default:"false"`
	Catalog        string   `envconfig:"PEAK_CATALOG" default:""`
	Apps           []string `envconfig:"PEAK_APPS" default:"Terminal,Cortex,Editor,Browser"`
}

// Viewport returns the configured viewport size.
func (c ShellConfig) Viewport() types.Size {
	return types.Size{Width: c.ViewportWidth, Height: c.ViewportHeight}
}

// InitialPersona parses the configured persona.
func (c ShellConfig) InitialPersona() (types.Persona, error) {
	return types.ParsePersona(c.Persona)
}

// AppIDs parses the list of apps to register at startup.
func (c ShellConfig) AppIDs() ([]types.AppID, error) {
	ids := make([]types.AppID, 0, len(c.Apps))
	for _, name := range c.Apps {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		id, err := types.ParseAppID(name)
		if err != nil {
			return nil, fmt.Errorf("invalid PEAK_APPS entry: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// TerminalConfig configures the Terminal app's shell.
type TerminalConfig struct {
	Shell string `envconfig:"TERMINAL_SHELL" default:""`
	Dir   string `envconfig:"TERMINAL_DIR" default:""`
}

// EditorConfig configures the Editor app.
type EditorConfig struct {
	Path string `envconfig:"EDITOR_PATH" default:""`
}

// MonitorConfig configures the Cortex monitor app.
type MonitorConfig struct {
	Interval time.Duration `envconfig:"MONITOR_INTERVAL" default:"1s"`
}

// BrowserConfig configures the Browser app.
type BrowserConfig struct {
	HomeURL     string        `envconfig:"BROWSER_HOME" default:""`
	Timeout     time.Duration `envconfig:"BROWSER_TIMEOUT" default:"10s"`
	UserAgent   string        `envconfig:"BROWSER_USER_AGENT" default:"PeakOS-Navigator/1.0"`
	MaxFailures uint32        `envconfig:"BROWSER_MAX_FAILURES" default:"5"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Host:            "0.0.0.0",
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Shell: ShellConfig{
			ViewportWidth:  1920,
			ViewportHeight: 1080,
			Workspaces:     4,
			Persona:        "Desktop",
			DockVisible:    true,
			Apps:           []string{"Terminal", "Cortex", "Editor", "Browser"},
		},
		Monitor: MonitorConfig{
			Interval: time.Second,
		},
		Browser: BrowserConfig{
			Timeout:     10 * time.Second,
			UserAgent:   "PeakOS-Navigator/1.0",
			MaxFailures: 5,
		},
	}
}
