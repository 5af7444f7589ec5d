package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const keyEnv = "ENV"
const envLocal = "local"

const (
	defaultGeocodeEndpoint = "https://maps.googleapis.com/maps/api/geocode/json"
	defaultPlacesEndpoint  = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"
	DefaultStoresBaseURL   = "http://localhost:8080/api"
)

type Config struct {
	config *viper.Viper
}

// Load reads config/config.<env>.yaml from the project root when it exists.
// Environment variables always take precedence over the file.
func Load(env string) (*Config, error) {

	if len(env) == 0 {
		if env = os.Getenv(keyEnv); len(env) == 0 {
			env = envLocal
		}
	}

	configPath, err := getConfigPath(env)

	viperConfig := viper.New()
	if err == nil {
		viperConfig.SetConfigFile(configPath)
		if err := viperConfig.ReadInConfig(); err != nil {
			slog.Warn(fmt.Sprintf("error reading config file, %s", err))
		}
	}
	viperConfig.AutomaticEnv()

	viperConfig.SetDefault("google.geocode_endpoint", defaultGeocodeEndpoint)
	viperConfig.SetDefault("google.places_endpoint", defaultPlacesEndpoint)
	viperConfig.SetDefault("client.stores_base_url", DefaultStoresBaseURL)
	viperConfig.SetDefault("client.history_base_url", DefaultStoresBaseURL)

	cfg := &Config{
		config: viperConfig,
	}

	return cfg, nil
}

// Set overrides a key for the lifetime of this Config. Flags use it to win
// over both the file and the environment.
func (c *Config) Set(key string, value any) {
	c.config.Set(key, value)
}

func (c *Config) GetPort() string {
	return c.getString("PORT", "server.port")
}

func (c *Config) GetLogLevel() string {
	return c.getString("LOG_LEVEL", "server.log_level")
}

// GetGoogleAPIKey returns the credential shared by the geocoding and places
// services. An empty value is valid and disables both.
func (c *Config) GetGoogleAPIKey() string {
	apiKey := c.getString("GOOGLE_MAPS_API_KEY", "google.api_key")
	if len(apiKey) == 0 {
		apiKey = c.config.GetString("VITE_GOOGLE_MAPS_API_KEY")
	}

	return apiKey
}

func (c *Config) GetGeocodeEndpoint() string {
	return c.getString("GEOCODE_ENDPOINT", "google.geocode_endpoint")
}

func (c *Config) GetPlacesEndpoint() string {
	return c.getString("PLACES_ENDPOINT", "google.places_endpoint")
}

// GetUpstreamTimeout is zero unless configured, leaving deadlines to the transport.
func (c *Config) GetUpstreamTimeout() time.Duration {
	timeout := c.config.GetDuration("UPSTREAM_TIMEOUT")
	if timeout == 0 {
		timeout = c.config.GetDuration("google.timeout")
	}

	return timeout
}

func (c *Config) GetHistoryDBPath() string {
	return c.getString("HISTORY_DB_PATH", "database.history_db_path")
}

func (c *Config) GetStoresBaseURL() string {
	return c.getString("STORES_BASE_URL", "client.stores_base_url")
}

func (c *Config) GetHistoryBaseURL() string {
	return c.getString("HISTORY_BASE_URL", "client.history_base_url")
}

func (c *Config) getString(envKey string, fileKey string) string {
	value := c.config.GetString(envKey)
	if len(value) == 0 {
		value = c.config.GetString(fileKey)
	}

	return value
}

func getProjectRoot() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}

	for {
		configDir := filepath.Join(currentDir, "config")
		if info, err := os.Stat(configDir); err == nil && info.IsDir() {
			return currentDir, nil
		}

		parent := filepath.Dir(currentDir)

		if parent == currentDir {
			break
		}

		currentDir = parent
	}

	return "", fmt.Errorf("could not find project root (directory containing 'config' folder)")
}

func getConfigPath(env string) (string, error) {
	configFile := fmt.Sprintf("config.%s.yaml", env)

	projectRoot, err := getProjectRoot()
	if err != nil {
		slog.Warn("failed to find project root with config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("failed to find project root: %w", err)
	}
	configPath := filepath.Join(projectRoot, "config", configFile)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		slog.Warn("failed to find config file within config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("config file does not exist: %s", configPath)
	}

	return configPath, nil
}
