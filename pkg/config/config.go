// Package config holds the configuration structures for the solarvoyage daemon.
package config

import "fmt"

// ConfigData represents the complete configuration structure
type ConfigData struct {
	HTTP       HTTPData       `json:"http"`
	Storage    StorageData    `json:"storage,omitempty"`
	CloudCover CloudCoverData `json:"cloudcover,omitempty"`
}

// HTTPData holds the configuration for the REST server
type HTTPData struct {
	ListenAddr   string   `json:"listen_addr,omitempty"`
	CORSOrigins  []string `json:"cors_origins,omitempty"`
	ReadTimeout  int      `json:"read_timeout,omitempty"`
	WriteTimeout int      `json:"write_timeout,omitempty"`
}

// StorageData holds the configuration for the run-history storage backend.
// Storage is optional; when no connection string is configured, estimate
// runs are served from the request/response cycle only.
type StorageData struct {
	TimescaleDB *TimescaleDBData `json:"timescaledb,omitempty"`
}

type TimescaleDBData struct {
	ConnectionString string `json:"connection_string"`
}

// CloudCoverData holds the configuration for the historic cloud-cover source
type CloudCoverData struct {
	APIEndpoint       string `json:"api_endpoint,omitempty"`
	CachePath         string `json:"cache_path,omitempty"`
	RequestsPerMinute int    `json:"requests_per_minute,omitempty"`
}

// Defaults applied when the config file leaves a field unset
const (
	DefaultListenAddr        = ":8085"
	DefaultReadTimeout       = 10
	DefaultWriteTimeout      = 60
	DefaultCloudAPIEndpoint  = "https://power.larc.nasa.gov"
	DefaultRequestsPerMinute = 30
)

// ApplyDefaults fills in defaults for unset fields and validates the result
func (c *ConfigData) ApplyDefaults() error {
	if c.HTTP.ListenAddr == "" {
		c.HTTP.ListenAddr = DefaultListenAddr
	}
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = DefaultReadTimeout
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = DefaultWriteTimeout
	}
	if c.CloudCover.APIEndpoint == "" {
		c.CloudCover.APIEndpoint = DefaultCloudAPIEndpoint
	}
	if c.CloudCover.RequestsPerMinute == 0 {
		c.CloudCover.RequestsPerMinute = DefaultRequestsPerMinute
	}
	if c.CloudCover.RequestsPerMinute < 0 {
		return fmt.Errorf("cloudcover requests_per_minute must be positive, got %d", c.CloudCover.RequestsPerMinute)
	}
	if c.Storage.TimescaleDB != nil && c.Storage.TimescaleDB.ConnectionString == "" {
		return fmt.Errorf("storage.timescaledb is configured but connection_string is empty")
	}
	return nil
}
