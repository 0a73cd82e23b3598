package shared

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestNewLogger(t *testing.T) {
	t.Run("with writer", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewLogger(buf)
		if logger == nil {
			t.Fatal("expected logger to be created")
		}

		logger.Error("test message")
		if buf.Len() == 0 {
			t.Error("expected log output to be written")
		}
	})

	t.Run("nil writer defaults to stderr", func(t *testing.T) {
		if NewLogger(nil) == nil {
			t.Fatal("expected logger to be created")
		}
	})
}

func TestGenerateID(t *testing.T) {
	first := GenerateID()
	second := GenerateID()

	if first == "" {
		t.Error("expected non-empty ID")
	}
	if first == second {
		t.Error("expected unique IDs")
	}
}

func TestGenerateState(t *testing.T) {
	t.Run("encodes 16 random bytes", func(t *testing.T) {
		state, err := GenerateState()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		decoded, err := hex.DecodeString(state)
		if err != nil {
			t.Fatalf("expected hex string, got %q", state)
		}
		if len(decoded) != 16 {
			t.Errorf("expected 16 bytes, got %d", len(decoded))
		}
	})

	t.Run("unique per call", func(t *testing.T) {
		first, _ := GenerateState()
		second, _ := GenerateState()
		if first == second {
			t.Error("expected unique state nonces")
		}
	})
}
