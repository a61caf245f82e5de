package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultRefreshInterval   = 30 * time.Second
	DefaultBroadcastInterval = 5 * time.Second
	DefaultHTTPPort          = 8080
	DefaultViewportWidth     = 1280
	DefaultRange             = time.Hour
	DefaultSpan              = 12
	DefaultHeight            = 250
	DefaultThreshold         = 1
	DefaultWarningThreshold  = 0.5
	DefaultAPIKeyHeader      = "X-API-Key"
	DefaultAlertCooldown     = 15 * time.Minute
)

// Config is the top-level configuration file.
type Config struct {
	Agent AgentConfig `yaml:"agent"`
}

// AgentConfig holds all agent settings.
type AgentConfig struct {
	// HTTPPort is the port the REST API, WebSocket stream and /metrics listen on.
	HTTPPort int `yaml:"http_port"`

	// RefreshInterval controls how often every panel re-queries its datasource.
	RefreshInterval time.Duration `yaml:"refresh_interval"`

	// BroadcastInterval controls how often panel views are pushed to
	// WebSocket clients.
	BroadcastInterval time.Duration `yaml:"broadcast_interval"`

	// ViewportWidth is the initial dashboard width in pixels. Clients update
	// it through the API when their window resizes.
	ViewportWidth Pixels `yaml:"viewport_width"`

	// Auth configures how API clients authenticate.
	Auth APIAuthConfig `yaml:"auth"`

	// Alerts configures webhook notifications on health level changes.
	Alerts AlertsConfig `yaml:"alerts"`

	Datasources []Datasource `yaml:"datasources"`
	Panels      []Panel      `yaml:"panels"`
}

// AlertsConfig controls webhook notifications for health panel series.
type AlertsConfig struct {
	// MinLevel is the lowest level that fires: warning | error (default error).
	MinLevel string `yaml:"min_level"`

	// Cooldown suppresses repeated fires of the same series.
	Cooldown time.Duration `yaml:"cooldown"`

	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// WebhookConfig defines one webhook delivery target.
type WebhookConfig struct {
	// Type is one of: teams | slack | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable that holds the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string { return fromEnv(w.URLEnv) }

// Datasource describes one sampling backend.
type Datasource struct {
	// ID is referenced by Panel.Datasource.
	ID string `yaml:"id"`

	// Type is one of: graphite | prometheus | exposition.
	Type string `yaml:"type"`

	// Endpoint is the base URL (graphite, prometheus) or the full /metrics
	// URL (exposition).
	Endpoint string `yaml:"endpoint"`

	Auth AuthConfig `yaml:"auth"`
	TLS  TLSConfig  `yaml:"tls"`
}

// AuthConfig specifies the authentication mode for a datasource.
type AuthConfig struct {
	// Mode is one of: mtls | apikey | bearer | basic | none.
	Mode string `yaml:"mode"`

	// mTLS fields, used when Mode == "mtls".
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
	CAFile   string `yaml:"ca_file"`

	// Header is the HTTP header the API key is sent in (Mode == "apikey").
	Header string `yaml:"header"`
	// KeyEnv names the environment variable holding the API key.
	KeyEnv string `yaml:"key_env"`

	// TokenEnv names the environment variable holding the bearer token.
	TokenEnv string `yaml:"token_env"`

	// Username is the literal basic-auth username.
	Username string `yaml:"username"`
	// PasswordEnv names the environment variable holding the password.
	PasswordEnv string `yaml:"password_env"`
}

// Key returns the API key value resolved from the environment.
// Returns empty string if KeyEnv is unset or the variable is not found.
func (a AuthConfig) Key() string { return fromEnv(a.KeyEnv) }

// Token returns the bearer token value resolved from the environment.
func (a AuthConfig) Token() string { return fromEnv(a.TokenEnv) }

// Password returns the basic-auth password resolved from the environment.
func (a AuthConfig) Password() string { return fromEnv(a.PasswordEnv) }

// TLSConfig holds per-datasource TLS dial options.
type TLSConfig struct {
	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// APIAuthConfig configures REST API authentication.
type APIAuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// Header is the request header carrying the key.
	Header string `yaml:"header"`

	// KeyEnv is the name of the environment variable holding the expected key.
	KeyEnv string `yaml:"key_env"`
}

// Key returns the expected API key resolved from the environment.
func (a APIAuthConfig) Key() string { return fromEnv(a.KeyEnv) }

// EffectiveHeader returns Header or DefaultAPIKeyHeader.
func (a APIAuthConfig) EffectiveHeader() string {
	if a.Header == "" {
		return DefaultAPIKeyHeader
	}
	return a.Header
}

// Panel describes one dashboard panel.
type Panel struct {
	ID string `yaml:"id"`

	// Type is one of: health | numeric.
	Type string `yaml:"type"`

	// Datasource is the ID of the Datasource to query.
	Datasource string `yaml:"datasource"`

	// Expression is the metric query, passed to the datasource as-is.
	Expression string `yaml:"expression"`

	// Range is how far back each refresh queries.
	Range time.Duration `yaml:"range"`

	// Span is the panel width in twelfths of the viewport (1 to 12).
	Span int `yaml:"span"`

	// Height is the panel height, including the 32px chrome.
	Height Pixels `yaml:"height"`

	// NullPointMode is connected | null.
	NullPointMode string `yaml:"null_point_mode"`

	// Health panel settings.
	Direction               string   `yaml:"direction"`
	Threshold               *float64 `yaml:"threshold"`
	WarningThreshold        *float64 `yaml:"warning_threshold"`
	IncludeWarningThreshold bool     `yaml:"include_warning_threshold"`
	HealthyColor            string   `yaml:"healthy_color"`
	WarningColor            string   `yaml:"warning_color"`
	ErrorColor              string   `yaml:"error_color"`

	// Numeric panel settings.
	DecimalPoints int    `yaml:"decimal_points"`
	ShowDelta     bool   `yaml:"show_delta"`
	DeltaColor    string `yaml:"delta_color"`
}

// ErrorThreshold returns Threshold or DefaultThreshold.
func (p Panel) ErrorThreshold() float64 {
	if p.Threshold == nil {
		return DefaultThreshold
	}
	return *p.Threshold
}

// WarnThreshold returns WarningThreshold or DefaultWarningThreshold.
func (p Panel) WarnThreshold() float64 {
	if p.WarningThreshold == nil {
		return DefaultWarningThreshold
	}
	return *p.WarningThreshold
}

// Pixels is a length in CSS pixels. In YAML it accepts a number (250) or a
// string with a px suffix ("250px").
type Pixels float64

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Pixels) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: pixel value must be a scalar", value.Line)
	}
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value.Value), "px"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("line %d: invalid pixel value %q", value.Line, value.Value)
	}
	*p = Pixels(v)
	return nil
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	applyPanelDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Agent: AgentConfig{
			HTTPPort:          DefaultHTTPPort,
			RefreshInterval:   DefaultRefreshInterval,
			BroadcastInterval: DefaultBroadcastInterval,
			ViewportWidth:     DefaultViewportWidth,
			Alerts: AlertsConfig{
				MinLevel: "error",
				Cooldown: DefaultAlertCooldown,
			},
		},
	}
}

// applyPanelDefaults fills per-panel defaults, which cannot be pre-populated
// before the list length is known.
func applyPanelDefaults(cfg *Config) {
	for i := range cfg.Agent.Panels {
		p := &cfg.Agent.Panels[i]
		if p.Range == 0 {
			p.Range = DefaultRange
		}
		if p.Span == 0 {
			p.Span = DefaultSpan
		}
		if p.Height == 0 {
			p.Height = DefaultHeight
		}
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	a := cfg.Agent
	if a.RefreshInterval <= 0 {
		return fmt.Errorf("agent.refresh_interval must be positive")
	}
	if a.BroadcastInterval <= 0 {
		return fmt.Errorf("agent.broadcast_interval must be positive")
	}
	if a.ViewportWidth <= 0 {
		return fmt.Errorf("agent.viewport_width must be positive")
	}
	switch a.Auth.Mode {
	case "apikey":
		if a.Auth.KeyEnv == "" {
			return fmt.Errorf("agent.auth: key_env is required for mode apikey")
		}
	case "none", "":
	default:
		return fmt.Errorf("agent.auth: unknown mode %q", a.Auth.Mode)
	}

	switch a.Alerts.MinLevel {
	case "warning", "error":
	default:
		return fmt.Errorf("agent.alerts: unknown min_level %q", a.Alerts.MinLevel)
	}
	if a.Alerts.Cooldown < 0 {
		return fmt.Errorf("agent.alerts: cooldown must not be negative")
	}
	for i, wh := range a.Alerts.Webhooks {
		switch wh.Type {
		case "teams", "slack", "http":
		default:
			return fmt.Errorf("agent.alerts.webhooks[%d]: unknown type %q", i, wh.Type)
		}
	}

	datasources := make(map[string]bool, len(a.Datasources))
	for i, ds := range a.Datasources {
		if ds.ID == "" {
			return fmt.Errorf("datasources[%d]: id is required", i)
		}
		if datasources[ds.ID] {
			return fmt.Errorf("datasources[%d]: duplicate id %q", i, ds.ID)
		}
		datasources[ds.ID] = true
		if ds.Endpoint == "" {
			return fmt.Errorf("datasources[%d] %q: endpoint is required", i, ds.ID)
		}
		switch ds.Type {
		case "graphite", "prometheus", "exposition":
		default:
			return fmt.Errorf("datasources[%d] %q: unknown type %q", i, ds.ID, ds.Type)
		}
		switch ds.Auth.Mode {
		case "mtls", "apikey", "bearer", "basic", "none", "":
		default:
			return fmt.Errorf("datasources[%d] %q: unknown auth mode %q", i, ds.ID, ds.Auth.Mode)
		}
	}

	panels := make(map[string]bool, len(a.Panels))
	for i, p := range a.Panels {
		if p.ID == "" {
			return fmt.Errorf("panels[%d]: id is required", i)
		}
		if panels[p.ID] {
			return fmt.Errorf("panels[%d]: duplicate id %q", i, p.ID)
		}
		panels[p.ID] = true
		switch p.Type {
		case "health", "numeric":
		default:
			return fmt.Errorf("panels[%d] %q: unknown type %q", i, p.ID, p.Type)
		}
		if !datasources[p.Datasource] {
			return fmt.Errorf("panels[%d] %q: unknown datasource %q", i, p.ID, p.Datasource)
		}
		if p.Expression == "" {
			return fmt.Errorf("panels[%d] %q: expression is required", i, p.ID)
		}
		if p.Span < 1 || p.Span > 12 {
			return fmt.Errorf("panels[%d] %q: span must be between 1 and 12", i, p.ID)
		}
		if p.Height < 0 {
			return fmt.Errorf("panels[%d] %q: height must not be negative", i, p.ID)
		}
		if p.Range < 0 {
			return fmt.Errorf("panels[%d] %q: range must not be negative", i, p.ID)
		}
		if p.DecimalPoints < 0 {
			return fmt.Errorf("panels[%d] %q: decimal_points must not be negative", i, p.ID)
		}
		switch p.NullPointMode {
		case "connected", "Connected", "null", "Null", "":
		default:
			return fmt.Errorf("panels[%d] %q: unknown null_point_mode %q", i, p.ID, p.NullPointMode)
		}
		switch p.Direction {
		case "asc", "Asc", "ascending", "desc", "Desc", "descending", "":
		default:
			return fmt.Errorf("panels[%d] %q: unknown direction %q", i, p.ID, p.Direction)
		}
	}
	return nil
}

func fromEnv(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}
