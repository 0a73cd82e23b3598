package shared

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Server.Host != "127.0.0.1" {
			t.Errorf("expected default host 127.0.0.1, got %s", config.Server.Host)
		}
		if config.Server.Port != 9876 {
			t.Errorf("expected default port 9876, got %d", config.Server.Port)
		}
		if config.Credentials.Spotify.RedirectURI != "http://127.0.0.1:9876/callback" {
			t.Errorf("unexpected default redirect URI: %s", config.Credentials.Spotify.RedirectURI)
		}
		if len(config.Credentials.Spotify.Scopes) == 0 {
			t.Error("expected default scopes to be set")
		}
		if len(config.Presets) == 0 {
			t.Error("expected default presets to be set")
		}
	})

	t.Run("Addr", func(t *testing.T) {
		server := ServerConfig{Host: "127.0.0.1", Port: 9876}
		if server.Addr() != "127.0.0.1:9876" {
			t.Errorf("unexpected addr: %s", server.Addr())
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		t.Run("valid file", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			content := `
[credentials.spotify]
client_id = "abc"
client_secret = "def"
redirect_uri = "http://127.0.0.1:9999/callback"

[server]
host = "127.0.0.1"
port = 9999
`
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			config, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			want := SpotifyConfig{
				ClientID:     "abc",
				ClientSecret: "def",
				RedirectURI:  "http://127.0.0.1:9999/callback",
			}
			if diff := cmp.Diff(want, config.Credentials.Spotify); diff != "" {
				t.Errorf("unexpected spotify config (-want +got):\n%s", diff)
			}
		})

		t.Run("missing file", func(t *testing.T) {
			if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
				t.Error("expected error for missing file")
			}
		})

		t.Run("invalid toml", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.toml")
			if err := os.WriteFile(path, []byte("not [valid"), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Error("expected error for invalid toml")
			}
		})
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("SPOTIFY_CLIENT_ID", "env_id")
		t.Setenv("SPOTIFY_CLIENT_SECRET", "env_secret")

		config := DefaultConfig()

		if config.Credentials.Spotify.ClientID != "env_id" {
			t.Errorf("expected env client id, got %s", config.Credentials.Spotify.ClientID)
		}
		if config.Credentials.Spotify.ClientSecret != "env_secret" {
			t.Errorf("expected env client secret, got %s", config.Credentials.Spotify.ClientSecret)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		t.Run("creates file", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := CreateConfigFile(path); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if _, err := os.Stat(path); err != nil {
				t.Errorf("expected config file to exist: %v", err)
			}
		})

		t.Run("refuses to overwrite", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte("existing"), 0644); err != nil {
				t.Fatalf("failed to write file: %v", err)
			}
			if err := CreateConfigFile(path); err == nil {
				t.Error("expected error for existing file")
			}
		})
	})

	t.Run("SaveConfig round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")

		config := DefaultConfig()
		config.Credentials.Spotify.ClientID = "saved_id"
		config.Server.Port = 9999

		if err := SaveConfig(path, config); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		loaded, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if diff := cmp.Diff(config, loaded); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	})
}
