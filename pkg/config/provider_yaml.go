package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider loads configuration from a YAML file
type YAMLProvider struct {
	filename string
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from the YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	// Load into a temporary struct with YAML tags
	var yamlConfig struct {
		HTTP struct {
			ListenAddr   string   `yaml:"listen_addr"`
			CORSOrigins  []string `yaml:"cors_origins"`
			ReadTimeout  int      `yaml:"read_timeout"`
			WriteTimeout int      `yaml:"write_timeout"`
		} `yaml:"http"`
		Storage struct {
			TimescaleDB *struct {
				ConnectionString string `yaml:"connection_string"`
			} `yaml:"timescaledb"`
		} `yaml:"storage"`
		CloudCover struct {
			APIEndpoint       string `yaml:"api_endpoint"`
			CachePath         string `yaml:"cache_path"`
			RequestsPerMinute int    `yaml:"requests_per_minute"`
		} `yaml:"cloudcover"`
	}

	err = yaml.Unmarshal(cfgFile, &yamlConfig)
	if err != nil {
		return nil, err
	}

	// Convert to our internal format
	config := &ConfigData{
		HTTP: HTTPData{
			ListenAddr:   yamlConfig.HTTP.ListenAddr,
			CORSOrigins:  yamlConfig.HTTP.CORSOrigins,
			ReadTimeout:  yamlConfig.HTTP.ReadTimeout,
			WriteTimeout: yamlConfig.HTTP.WriteTimeout,
		},
		CloudCover: CloudCoverData{
			APIEndpoint:       yamlConfig.CloudCover.APIEndpoint,
			CachePath:         yamlConfig.CloudCover.CachePath,
			RequestsPerMinute: yamlConfig.CloudCover.RequestsPerMinute,
		},
	}

	if yamlConfig.Storage.TimescaleDB != nil {
		config.Storage.TimescaleDB = &TimescaleDBData{
			ConnectionString: yamlConfig.Storage.TimescaleDB.ConnectionString,
		}
	}

	if err := config.ApplyDefaults(); err != nil {
		return nil, err
	}

	return config, nil
}
