package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// YAML structs mirror the internal ones with kebab-case keys
type configYAML struct {
	Dataset     DatasetYAML      `yaml:"dataset"`
	Controllers []ControllerYAML `yaml:"controllers,omitempty"`
}

type DatasetYAML struct {
	Path           string `yaml:"path,omitempty"`
	URL            string `yaml:"url,omitempty"`
	Timezone       string `yaml:"timezone,omitempty"`
	LastUpdateFile string `yaml:"last-update-file,omitempty"`
	ReloadInterval string `yaml:"reload-interval,omitempty"`
}

type ControllerYAML struct {
	Type       string          `yaml:"type,omitempty"`
	RESTServer *RESTServerYAML `yaml:"rest,omitempty"`
	Reloader   *ReloaderYAML   `yaml:"reloader,omitempty"`
}

type RESTServerYAML struct {
	ListenAddr  string `yaml:"listen-addr,omitempty"`
	HTTPPort    int    `yaml:"http-port,omitempty"`
	TLSCertPath string `yaml:"tls-cert-path,omitempty"`
	TLSKeyPath  string `yaml:"tls-key-path,omitempty"`
	EnableCORS  bool   `yaml:"enable-cors,omitempty"`
}

type ReloaderYAML struct {
	Interval string `yaml:"interval,omitempty"`
}

// LoadConfig loads the complete configuration from the YAML file. The result is
// cached; later calls return the same data.
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	if y.config != nil {
		return y.config, nil
	}

	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	var yamlConfig configYAML
	if err := yaml.Unmarshal(cfgFile, &yamlConfig); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", y.filename, err)
	}

	config := &ConfigData{
		Dataset: DatasetData{
			Path:           yamlConfig.Dataset.Path,
			URL:            yamlConfig.Dataset.URL,
			Timezone:       yamlConfig.Dataset.Timezone,
			LastUpdateFile: yamlConfig.Dataset.LastUpdateFile,
			ReloadInterval: yamlConfig.Dataset.ReloadInterval,
		},
		Controllers: make([]ControllerData, len(yamlConfig.Controllers)),
	}

	for i, controller := range yamlConfig.Controllers {
		config.Controllers[i] = ControllerData{
			Type: controller.Type,
		}

		if controller.RESTServer != nil {
			config.Controllers[i].RESTServer = &RESTServerData{
				ListenAddr:  controller.RESTServer.ListenAddr,
				HTTPPort:    controller.RESTServer.HTTPPort,
				TLSCertPath: controller.RESTServer.TLSCertPath,
				TLSKeyPath:  controller.RESTServer.TLSKeyPath,
				EnableCORS:  controller.RESTServer.EnableCORS,
			}
		}

		if controller.Reloader != nil {
			config.Controllers[i].Reloader = &ReloaderData{
				Interval: controller.Reloader.Interval,
			}
		}
	}

	ApplyDefaults(config)
	y.config = config
	return config, nil
}

// GetDataset returns the dataset section
func (y *YAMLProvider) GetDataset() (*DatasetData, error) {
	config, err := y.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &config.Dataset, nil
}

// GetControllers returns the controller configurations
func (y *YAMLProvider) GetControllers() ([]ControllerData, error) {
	config, err := y.LoadConfig()
	if err != nil {
		return nil, err
	}
	return config.Controllers, nil
}

// IsReadOnly returns true since YAML files are edited by hand
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML files
func (y *YAMLProvider) Close() error {
	return nil
}
