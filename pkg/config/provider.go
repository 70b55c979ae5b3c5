package config

import (
	"errors"
	"fmt"
	"time"
)

// Controller types
const (
	ControllerREST     = "rest"
	ControllerReloader = "reloader"
)

// Defaults applied by ApplyDefaults
const (
	DefaultListenAddr     = "0.0.0.0"
	DefaultHTTPPort       = 8080
	DefaultTimezone       = "UTC"
	DefaultReloadInterval = "5m"
)

var (
	// ErrUnsupportedBackend is returned by NewProvider for an unknown backend name
	ErrUnsupportedBackend = errors.New("unsupported configuration backend")
	// ErrNoDataset is returned when neither a dataset path nor a URL is configured
	ErrNoDataset = errors.New("no dataset path or url configured")
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetDataset() (*DatasetData, error)
	GetControllers() ([]ControllerData, error)

	IsReadOnly() bool
	Close() error
}

// NewProvider opens the configuration source for a backend name ("yaml" or "sqlite")
func NewProvider(backend, path string) (ConfigProvider, error) {
	switch backend {
	case "yaml", "yml":
		return NewYAMLProvider(path), nil
	case "sqlite":
		provider, err := NewSQLiteProvider(path)
		if err != nil {
			return nil, fmt.Errorf("error creating SQLite provider: %w", err)
		}
		return provider, nil
	}
	return nil, fmt.Errorf("%w: %q, use 'yaml' or 'sqlite'", ErrUnsupportedBackend, backend)
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Dataset     DatasetData      `json:"dataset"`
	Controllers []ControllerData `json:"controllers,omitempty"`
}

// DatasetData describes where the outage dataset comes from and how it is read
type DatasetData struct {
	Path           string `json:"path,omitempty"`
	URL            string `json:"url,omitempty"`
	Timezone       string `json:"timezone,omitempty"`
	LastUpdateFile string `json:"last_update_file,omitempty"`
	ReloadInterval string `json:"reload_interval,omitempty"`
}

// Location loads the dataset's timezone
func (d DatasetData) Location() (*time.Location, error) {
	tz := d.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}

// Interval parses the reload interval
func (d DatasetData) Interval() (time.Duration, error) {
	return parseInterval(d.ReloadInterval)
}

// ControllerData holds the configuration for the controllers
type ControllerData struct {
	Type       string          `json:"type,omitempty"`
	RESTServer *RESTServerData `json:"rest,omitempty"`
	Reloader   *ReloaderData   `json:"reloader,omitempty"`
}

// RESTServerData configures the REST API server
type RESTServerData struct {
	ListenAddr  string `json:"listen_addr,omitempty"`
	HTTPPort    int    `json:"http_port,omitempty"`
	TLSCertPath string `json:"tls_cert_path,omitempty"`
	TLSKeyPath  string `json:"tls_key_path,omitempty"`
	EnableCORS  bool   `json:"enable_cors,omitempty"`
}

// ReloaderData configures the dataset reloader. An empty interval falls back to the
// dataset's reload interval.
type ReloaderData struct {
	Interval string `json:"interval,omitempty"`
}

func parseInterval(s string) (time.Duration, error) {
	if s == "" {
		s = DefaultReloadInterval
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("interval must be positive, got %s", s)
	}
	return d, nil
}

// ReloadInterval returns the effective interval of a reloader controller
func (c ControllerData) ReloadInterval(dataset DatasetData) (time.Duration, error) {
	if c.Reloader != nil && c.Reloader.Interval != "" {
		return parseInterval(c.Reloader.Interval)
	}
	return dataset.Interval()
}

// ApplyDefaults fills in unset values
func ApplyDefaults(cfg *ConfigData) {
	if cfg.Dataset.Timezone == "" {
		cfg.Dataset.Timezone = DefaultTimezone
	}
	if cfg.Dataset.ReloadInterval == "" {
		cfg.Dataset.ReloadInterval = DefaultReloadInterval
	}

	for i := range cfg.Controllers {
		c := &cfg.Controllers[i]
		if c.Type == ControllerREST {
			if c.RESTServer == nil {
				c.RESTServer = &RESTServerData{}
			}
			if c.RESTServer.ListenAddr == "" {
				c.RESTServer.ListenAddr = DefaultListenAddr
			}
			if c.RESTServer.HTTPPort == 0 {
				c.RESTServer.HTTPPort = DefaultHTTPPort
			}
		}
		if c.Type == ControllerReloader && c.Reloader == nil {
			c.Reloader = &ReloaderData{}
		}
	}
}

// Validate checks that a configuration can be run
func Validate(cfg *ConfigData) error {
	if cfg.Dataset.Path == "" && cfg.Dataset.URL == "" {
		return ErrNoDataset
	}
	if cfg.Dataset.Path != "" && cfg.Dataset.URL != "" {
		return errors.New("dataset path and url are mutually exclusive")
	}
	if _, err := cfg.Dataset.Location(); err != nil {
		return err
	}
	if _, err := cfg.Dataset.Interval(); err != nil {
		return fmt.Errorf("dataset reload interval: %w", err)
	}

	for _, c := range cfg.Controllers {
		switch c.Type {
		case ControllerREST:
			if c.RESTServer != nil && (c.RESTServer.TLSCertPath == "") != (c.RESTServer.TLSKeyPath == "") {
				return errors.New("rest controller needs both tls cert and key, or neither")
			}
		case ControllerReloader:
			if _, err := c.ReloadInterval(cfg.Dataset); err != nil {
				return fmt.Errorf("reloader: %w", err)
			}
		default:
			return fmt.Errorf("unknown controller type %q", c.Type)
		}
	}
	return nil
}
