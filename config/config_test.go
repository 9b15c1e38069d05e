package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.Validate(), "DATABASE_URL is required")

	cfg.DatabaseURL = "postgresql://localhost:5432/fabworks"
	assert.NoError(t, cfg.Validate())
}

func TestEnvironmentPredicates(t *testing.T) {
	tests := []struct {
		goEnv         string
		isProduction  bool
		isTest        bool
		isDevelopment bool
	}{
		{"production", true, false, false},
		{"test", false, true, false},
		{"development", false, false, true},
		{"", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.goEnv, func(t *testing.T) {
			cfg := &Config{GoEnv: tt.goEnv}
			assert.Equal(t, tt.isProduction, cfg.IsProduction())
			assert.Equal(t, tt.isTest, cfg.IsTest())
			assert.Equal(t, tt.isDevelopment, cfg.IsDevelopment())
		})
	}
}

func TestGetEnv(t *testing.T) {
	os.Setenv("FABWORKS_TEST_KEY", "set-value")
	defer os.Unsetenv("FABWORKS_TEST_KEY")

	assert.Equal(t, "set-value", getEnv("FABWORKS_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", getEnv("FABWORKS_TEST_KEY_MISSING", "fallback"))
}

func TestSetConfig(t *testing.T) {
	original := GetConfig()
	defer SetConfig(original)

	cfg := &Config{Port: "9090"}
	SetConfig(cfg)
	assert.Equal(t, cfg, GetConfig())
}
