package logging

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/deixis/helmbridge/internal/config"
)

func TestNew_DefaultLevel(t *testing.T) {
	log := New(config.LogConfig{})
	if log.GetLevel() != zerolog.InfoLevel {
		t.Errorf("GetLevel() = %v, want info", log.GetLevel())
	}
}

func TestNew_ParsesLevel(t *testing.T) {
	log := New(config.LogConfig{Level: "debug"})
	if log.GetLevel() != zerolog.DebugLevel {
		t.Errorf("GetLevel() = %v, want debug", log.GetLevel())
	}
}

func TestNew_UnknownLevelFallsBack(t *testing.T) {
	log := New(config.LogConfig{Level: "shouty"})
	if log.GetLevel() != zerolog.InfoLevel {
		t.Errorf("GetLevel() = %v, want info fallback", log.GetLevel())
	}
}
