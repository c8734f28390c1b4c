package config

import (
	"encoding/json"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"time"

	"photofeed/pkg/errors"
)

// Config holds application configuration
type Config struct {
	Addr              string   `json:"addr"`
	DataDir           string   `json:"dataDir"`
	StaticDir         string   `json:"staticDir"`
	QuotaBytes        int64    `json:"quotaBytes"`
	PageSize          int      `json:"pageSize"`
	RevealDelayMS     int      `json:"revealDelayMs"`
	LocationEndpoint  string   `json:"locationEndpoint"`
	LocationTimeoutMS int      `json:"locationTimeoutMs"`
	LocationMaxAgeMS  int      `json:"locationMaxAgeMs"`
	Latitude          *float64 `json:"latitude,omitempty"`
	Longitude         *float64 `json:"longitude,omitempty"`
	Debug             bool     `json:"debug"`
}

// Defaults for the gallery engine. The quota mirrors the storage budget a
// browser grants a single origin.
const (
	DefaultAddr           = ":8080"
	DefaultQuotaBytes     = 5 * 1024 * 1024
	DefaultPageSize       = 12
	DefaultRevealDelayMS  = 3000
	DefaultLocationMS     = 5000
	DefaultLocationAgeMS  = 60000
	DefaultLocationSource = "http://ip-api.com/json"
)

// GetDefaultDataPath returns the default directory for the gallery slot
// and stored image files
func GetDefaultDataPath() string {
	currentUser, err := user.Current()
	if err != nil {
		return "./data"
	}

	defaultPath := filepath.Join(currentUser.HomeDir, "Pictures", "Photofeed")

	if err := os.MkdirAll(defaultPath, 0755); err != nil {
		return "./data"
	}

	return defaultPath
}

// GetConfigFilePath returns the path where the config file should be stored
func GetConfigFilePath() string {
	currentUser, err := user.Current()
	if err != nil {
		return "./config.json"
	}

	configPath := filepath.Join(currentUser.HomeDir, ".config", "photofeed")

	if err := os.MkdirAll(configPath, 0755); err != nil {
		return "./config.json"
	}

	return filepath.Join(configPath, "config.json")
}

// Load loads configuration from file, using defaults if the file doesn't
// exist, then applies environment overrides.
func Load() (*Config, error) {
	config := &Config{
		Addr:              DefaultAddr,
		DataDir:           GetDefaultDataPath(),
		StaticDir:         "./static",
		QuotaBytes:        DefaultQuotaBytes,
		PageSize:          DefaultPageSize,
		RevealDelayMS:     DefaultRevealDelayMS,
		LocationEndpoint:  DefaultLocationSource,
		LocationTimeoutMS: DefaultLocationMS,
		LocationMaxAgeMS:  DefaultLocationAgeMS,
	}

	configFile := GetConfigFilePath()
	if data, err := os.ReadFile(configFile); err == nil {
		if err := json.Unmarshal(data, config); err != nil {
			return nil, errors.ErrConfigLoadFailed.WithInternal(err).WithContext("path", configFile)
		}
	}

	config.applyEnvOverrides()

	if err := os.MkdirAll(config.DataDir, 0755); err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeIO, "DIR_CREATE_FAILED", "cannot create data directory").
			WithContext("path", config.DataDir)
	}

	return config, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PHOTOFEED_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("PHOTOFEED_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("PHOTOFEED_STATIC_DIR"); v != "" {
		c.StaticDir = v
	}
	if v := os.Getenv("PHOTOFEED_QUOTA_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			c.QuotaBytes = n
		}
	}
	if v := os.Getenv("PHOTOFEED_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.PageSize = n
		}
	}
	if v := os.Getenv("PHOTOFEED_REVEAL_DELAY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.RevealDelayMS = n
		}
	}
	if v := os.Getenv("PHOTOFEED_LOCATION_ENDPOINT"); v != "" {
		c.LocationEndpoint = v
	}
	if lat, lng := os.Getenv("PHOTOFEED_LAT"), os.Getenv("PHOTOFEED_LNG"); lat != "" && lng != "" {
		la, errLat := strconv.ParseFloat(lat, 64)
		ln, errLng := strconv.ParseFloat(lng, 64)
		if errLat == nil && errLng == nil {
			c.Latitude = &la
			c.Longitude = &ln
		}
	}
	if v := os.Getenv("PHOTOFEED_DEBUG"); v == "1" || v == "true" {
		c.Debug = true
	}
}

// Save saves the configuration to file
func (c *Config) Save() error {
	configFile := GetConfigFilePath()

	configDir := filepath.Dir(configFile)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return errors.ErrConfigSaveFailed.WithInternal(err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.ErrConfigSaveFailed.WithInternal(err)
	}

	if err := os.WriteFile(configFile, data, 0644); err != nil {
		return errors.ErrConfigSaveFailed.WithInternal(err).WithContext("path", configFile)
	}
	return nil
}

// GalleryPath is the single durable slot holding the serialized collection.
func (c *Config) GalleryPath() string {
	return filepath.Join(c.DataDir, "gallery.json")
}

// ImagesDir holds original upload files too large to inline.
func (c *Config) ImagesDir() string {
	return filepath.Join(c.DataDir, "images")
}

// RevealDelay is the pagination fallback delay.
func (c *Config) RevealDelay() time.Duration {
	return time.Duration(c.RevealDelayMS) * time.Millisecond
}

// LocationTimeout bounds a single location query.
func (c *Config) LocationTimeout() time.Duration {
	return time.Duration(c.LocationTimeoutMS) * time.Millisecond
}

// LocationMaxAge is the oldest platform-cached fix the resolver accepts.
func (c *Config) LocationMaxAge() time.Duration {
	return time.Duration(c.LocationMaxAgeMS) * time.Millisecond
}

// StaticCoordinate returns the configured fixed location, if any.
func (c *Config) StaticCoordinate() (float64, float64, bool) {
	if c.Latitude == nil || c.Longitude == nil {
		return 0, 0, false
	}
	return *c.Latitude, *c.Longitude, true
}
