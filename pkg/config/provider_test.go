package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

const sampleYAML = `
dataset:
  path: /var/lib/powerstats/power_stats_all_years.json
  timezone: UTC
  last-update-file: /var/lib/powerstats/last_update.txt
  reload-interval: 2m
controllers:
  - type: rest
    rest:
      http-port: 9090
      enable-cors: true
  - type: reloader
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestYAMLProvider(t *testing.T) {
	provider := NewYAMLProvider(writeFile(t, "config.yaml", sampleYAML))

	cfg, err := provider.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	expectedDataset := DatasetData{
		Path:           "/var/lib/powerstats/power_stats_all_years.json",
		Timezone:       "UTC",
		LastUpdateFile: "/var/lib/powerstats/last_update.txt",
		ReloadInterval: "2m",
	}
	if cfg.Dataset != expectedDataset {
		t.Errorf("Dataset = %+v, expected %+v", cfg.Dataset, expectedDataset)
	}

	if len(cfg.Controllers) != 2 {
		t.Fatalf("got %d controllers, expected 2", len(cfg.Controllers))
	}
	rest := cfg.Controllers[0].RESTServer
	if rest == nil || rest.HTTPPort != 9090 || rest.ListenAddr != DefaultListenAddr || !rest.EnableCORS {
		t.Errorf("rest = %+v", rest)
	}
	if cfg.Controllers[1].Reloader == nil {
		t.Error("reloader defaults not applied")
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("Validate: %v", err)
	}
	if !provider.IsReadOnly() {
		t.Error("YAML provider should be read-only")
	}
}

func TestYAMLProviderMissingFile(t *testing.T) {
	_, err := NewYAMLProvider(filepath.Join(t.TempDir(), "nope.yaml")).LoadConfig()
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, expected not-exist", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &ConfigData{
		Controllers: []ControllerData{{Type: ControllerREST}},
	}
	ApplyDefaults(cfg)

	if cfg.Dataset.Timezone != "UTC" || cfg.Dataset.ReloadInterval != "5m" {
		t.Errorf("dataset defaults = %+v", cfg.Dataset)
	}
	expected := &RESTServerData{ListenAddr: "0.0.0.0", HTTPPort: 8080}
	if !reflect.DeepEqual(cfg.Controllers[0].RESTServer, expected) {
		t.Errorf("rest defaults = %+v, expected %+v", cfg.Controllers[0].RESTServer, expected)
	}
}

func TestValidate(t *testing.T) {
	base := func() *ConfigData {
		cfg := &ConfigData{Dataset: DatasetData{Path: "data.json"}}
		ApplyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name   string
		modify func(*ConfigData)
		ok     bool
	}{
		{name: "minimal", modify: func(*ConfigData) {}, ok: true},
		{name: "no dataset", modify: func(c *ConfigData) { c.Dataset.Path = "" }, ok: false},
		{name: "path and url", modify: func(c *ConfigData) { c.Dataset.URL = "http://example.com/data.json" }, ok: false},
		{name: "bad timezone", modify: func(c *ConfigData) { c.Dataset.Timezone = "Mars/Olympus" }, ok: false},
		{name: "bad interval", modify: func(c *ConfigData) { c.Dataset.ReloadInterval = "soon" }, ok: false},
		{name: "negative interval", modify: func(c *ConfigData) { c.Dataset.ReloadInterval = "-1m" }, ok: false},
		{
			name: "cert without key",
			modify: func(c *ConfigData) {
				c.Controllers = []ControllerData{{Type: ControllerREST, RESTServer: &RESTServerData{TLSCertPath: "cert.pem"}}}
			},
			ok: false,
		},
		{
			name:   "unknown controller",
			modify: func(c *ConfigData) { c.Controllers = []ControllerData{{Type: "aprs"}} },
			ok:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.modify(cfg)
			err := Validate(cfg)
			if (err == nil) != tt.ok {
				t.Errorf("Validate() err = %v, expected ok = %v", err, tt.ok)
			}
		})
	}

	cfg := base()
	cfg.Dataset.Path = ""
	if err := Validate(cfg); !errors.Is(err, ErrNoDataset) {
		t.Errorf("err = %v, expected ErrNoDataset", err)
	}
}

func TestReloadInterval(t *testing.T) {
	dataset := DatasetData{ReloadInterval: "2m"}

	tests := []struct {
		name       string
		controller ControllerData
		expected   time.Duration
	}{
		{"inherits dataset", ControllerData{Type: ControllerReloader}, 2 * time.Minute},
		{"own interval", ControllerData{Type: ControllerReloader, Reloader: &ReloaderData{Interval: "30s"}}, 30 * time.Second},
	}

	for _, tt := range tests {
		got, err := tt.controller.ReloadInterval(dataset)
		if err != nil {
			t.Errorf("%s: %v", tt.name, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("%s: got %v, expected %v", tt.name, got, tt.expected)
		}
	}
}

func TestNewProviderUnsupported(t *testing.T) {
	_, err := NewProvider("etcd", "somewhere")
	if !errors.Is(err, ErrUnsupportedBackend) {
		t.Errorf("err = %v, expected ErrUnsupportedBackend", err)
	}
}

func TestSQLiteProviderRoundTrip(t *testing.T) {
	cfg, err := NewYAMLProvider(writeFile(t, "config.yaml", sampleYAML)).LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	dbPath := filepath.Join(t.TempDir(), "config.db")
	provider, err := NewSQLiteProvider(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteProvider: %v", err)
	}
	defer provider.Close()

	if err := provider.InitSchema(); err != nil {
		t.Fatalf("InitSchema: %v", err)
	}
	// applying the schema twice is harmless
	if err := provider.InitSchema(); err != nil {
		t.Fatalf("second InitSchema: %v", err)
	}

	if err := provider.SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	// saving again replaces, it does not duplicate
	if err := provider.SaveConfig(cfg); err != nil {
		t.Fatalf("second SaveConfig: %v", err)
	}

	loaded, err := provider.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig from sqlite: %v", err)
	}
	if !reflect.DeepEqual(loaded, cfg) {
		t.Errorf("sqlite config = %+v, expected %+v", loaded, cfg)
	}
	if provider.IsReadOnly() {
		t.Error("SQLite provider should be writable")
	}
}

func TestSQLiteProviderEmpty(t *testing.T) {
	provider, err := NewSQLiteProvider(filepath.Join(t.TempDir(), "config.db"))
	if err != nil {
		t.Fatalf("NewSQLiteProvider: %v", err)
	}
	defer provider.Close()

	if err := provider.InitSchema(); err != nil {
		t.Fatalf("InitSchema: %v", err)
	}

	cfg, err := provider.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Dataset.Timezone != DefaultTimezone || len(cfg.Controllers) != 0 {
		t.Errorf("empty config = %+v", cfg)
	}
}
