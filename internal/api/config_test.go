package api

import (
	"errors"
	"github.com/go-playground/validator/v10"
	"strings"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("SOURCE_TIMEOUT", "")
	t.Setenv("CACHE_MB", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("Should not fail loading an empty environment: %s", err)
	}

	if cfg.SourceTimeout != 10 {
		t.Errorf("SourceTimeout should default to 10, got %d", cfg.SourceTimeout)
	}
	if cfg.CacheMB != 32 {
		t.Errorf("CacheMB should default to 32, got %d", cfg.CacheMB)
	}
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("HIBP_URL", "http://localhost:9999")
	t.Setenv("SOURCE_TIMEOUT", "30")
	t.Setenv("CACHE_MB", "64")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("Should not fail loading configuration: %s", err)
	}

	if cfg.HibpURL != "http://localhost:9999" {
		t.Errorf("HibpURL should come from the environment, got %s", cfg.HibpURL)
	}
	if cfg.SourceTimeout != 30 {
		t.Errorf("SourceTimeout should come from the environment, got %d", cfg.SourceTimeout)
	}
	if cfg.CacheMB != 64 {
		t.Errorf("CacheMB should come from the environment, got %d", cfg.CacheMB)
	}
}

func TestLoadConfig_RejectsOutOfRange(t *testing.T) {
	t.Setenv("SOURCE_TIMEOUT", "-5")
	t.Setenv("CACHE_MB", "")

	_, err := LoadConfig()
	if err == nil {
		t.Fatalf("Should fail on a negative timeout")
	}
	if !strings.Contains(err.Error(), "SOURCE_TIMEOUT: This field must be at least 1") {
		t.Errorf("Error should name the field and the bound: %s", err)
	}
}

func TestMsgForTag(t *testing.T) {
	subject := struct {
		Name  string `validate:"required"`
		Count int    `validate:"min=3"`
	}{Count: 1}

	err := validator.New().Struct(&subject)
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) != 2 {
		t.Fatalf("Should fail validation with two field errors: %v", err)
	}

	want := map[string]string{
		"Name":  "This field is required",
		"Count": "This field must be at least 3",
	}
	for _, fe := range ve {
		if got := msgForTag(fe); got != want[fe.Field()] {
			t.Errorf("msgForTag(%s): %q, want %q", fe.Field(), got, want[fe.Field()])
		}
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.applyDefaults()
	if cfg.SourceTimeout != 10 || cfg.CacheMB != 32 {
		t.Errorf("Zero values should pick up defaults: %+v", cfg)
	}

	cfg = Config{SourceTimeout: 3, CacheMB: 8}
	cfg.applyDefaults()
	if cfg.SourceTimeout != 3 || cfg.CacheMB != 8 {
		t.Errorf("Explicit values should be kept: %+v", cfg)
	}
}
