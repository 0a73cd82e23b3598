package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/croonapp/croon/internal/shared"
	"github.com/croonapp/croon/internal/spotify"
	testutil "github.com/croonapp/croon/internal/testing"
)

func TestNewRunner(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})

		if runner.config == nil {
			t.Error("expected a default config")
		}
		if runner.logger == nil {
			t.Error("expected a default logger")
		}
		if runner.output == nil {
			t.Error("expected a default output writer")
		}
	})

	t.Run("keeps provided dependencies", func(t *testing.T) {
		config := shared.DefaultConfig()
		buf := &bytes.Buffer{}
		s := testutil.NewMemStore()

		runner := NewRunner(RunnerOpts{Config: config, Store: s, Output: buf})

		if runner.config != config {
			t.Error("expected provided config to be kept")
		}
		if runner.output != buf {
			t.Error("expected provided output to be kept")
		}
	})
}

func TestRegister(t *testing.T) {
	runner := NewRunner(RunnerOpts{})
	commands := runner.register()

	if len(commands) != 14 {
		t.Fatalf("expected 14 commands, got %d", len(commands))
	}

	names := map[string]bool{}
	for _, command := range commands {
		if command.Name == "" {
			t.Error("expected every command to have a name")
		}
		if names[command.Name] {
			t.Errorf("duplicate command name %q", command.Name)
		}
		names[command.Name] = true
	}

	for _, want := range []string{"setup", "auth", "play", "pause", "next", "prev", "volume", "shuffle", "current", "devices", "queue", "playlists", "search", "recent"} {
		if !names[want] {
			t.Errorf("expected command %q to be registered", want)
		}
	}
}

func TestWriters(t *testing.T) {
	t.Run("writeJSON", func(t *testing.T) {
		t.Run("compact", func(t *testing.T) {
			buf := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: buf})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if buf.String() != `{"key":"value"}`+"\n" {
				t.Errorf("unexpected output: %q", buf.String())
			}
		})

		t.Run("pretty", func(t *testing.T) {
			buf := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: buf})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(buf.String(), "  \"key\": \"value\"") {
				t.Errorf("expected indented output, got %q", buf.String())
			}
		})

		t.Run("unmarshalable value", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
			if err := runner.writeJSON(make(chan int), false); err == nil {
				t.Error("expected marshal error")
			}
		})

		t.Run("write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &testutil.FWriter{}})
			if err := runner.writeJSON(map[string]string{}, false); err == nil {
				t.Error("expected write error")
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		buf := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: buf})

		if err := runner.writePlain("volume: %d", 80); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if buf.String() != "volume: 80" {
			t.Errorf("unexpected output: %q", buf.String())
		}

		t.Run("write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &testutil.FWriter{}})
			if err := runner.writePlain("text"); err == nil {
				t.Error("expected write error")
			}
		})
	})

	t.Run("writePlainln pads with newlines", func(t *testing.T) {
		buf := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: buf})

		if err := runner.writePlainln("done"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if buf.String() != "\ndone\n" {
			t.Errorf("unexpected output: %q", buf.String())
		}
	})
}

func TestRemedialHint(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"no active device", shared.ErrNoActiveDevice, "croon devices"},
		{"premium required", shared.ErrPremiumRequired, "Premium"},
		{"action not permitted", shared.ErrActionNotPermitted, "already in the requested state"},
		{"rate limited", &spotify.RateLimitError{RetryAfter: 7}, "7 seconds"},
		{"not authenticated", shared.ErrNotAuthenticated, "croon auth login"},
		{"token expired", shared.ErrTokenExpired, "re-authenticate"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hint := remedialHint(tc.err)
			if !strings.Contains(hint, tc.want) {
				t.Errorf("expected hint containing %q, got %q", tc.want, hint)
			}
		})
	}

	t.Run("unknown errors get no hint", func(t *testing.T) {
		if hint := remedialHint(shared.ErrAPIRequest); hint != "" {
			t.Errorf("expected empty hint, got %q", hint)
		}
	})
}

func TestReportError(t *testing.T) {
	buf := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Output: buf})

	err := runner.reportError(shared.ErrNoActiveDevice)
	if err != shared.ErrNoActiveDevice {
		t.Errorf("expected the original error back, got %v", err)
	}
	if !strings.Contains(buf.String(), "croon devices") {
		t.Errorf("expected hint to be printed, got %q", buf.String())
	}
}
