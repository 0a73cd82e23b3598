package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Presets     map[string]string `toml:"presets"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials and OAuth settings.
//
// The redirect URI must use 127.0.0.1 rather than localhost; Spotify rejects
// loopback redirect URIs that use a hostname.
type SpotifyConfig struct {
	ClientID     string   `toml:"client_id" envconfig:"CLIENT_ID"`
	ClientSecret string   `toml:"client_secret" envconfig:"CLIENT_SECRET"`
	RedirectURI  string   `toml:"redirect_uri" envconfig:"REDIRECT_URI"`
	Scopes       []string `toml:"scopes" envconfig:"SCOPES"`
}

// DatabaseConfig contains credential store connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains the OAuth callback listener settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the listen address for the callback server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Environment variables prefixed with SPOTIFY_ (e.g. SPOTIFY_CLIENT_ID)
// override the corresponding credential fields.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	if err := config.ApplyEnv(); err != nil {
		panic(fmt.Sprintf("failed to apply environment overrides: %v", err))
	}
	return &config
}

// ApplyEnv overlays SPOTIFY_-prefixed environment variables onto the Spotify
// credential settings.
func (c *Config) ApplyEnv() error {
	var env SpotifyConfig
	if err := envconfig.Process("spotify", &env); err != nil {
		return fmt.Errorf("failed to read environment overrides: %w", err)
	}

	if env.ClientID != "" {
		c.Credentials.Spotify.ClientID = env.ClientID
	}
	if env.ClientSecret != "" {
		c.Credentials.Spotify.ClientSecret = env.ClientSecret
	}
	if env.RedirectURI != "" {
		c.Credentials.Spotify.RedirectURI = env.RedirectURI
	}
	if len(env.Scopes) > 0 {
		c.Credentials.Spotify.Scopes = env.Scopes
	}

	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes the configuration back to the specified path as TOML.
func SaveConfig(path string, config *Config) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
