package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "DB_PATH", "ENVIRONMENT", "UPLOAD_DIR", "MAX_UPLOAD_BYTES", "DEFAULT_ADMIN_PASSWORD", "EMAIL_TEST_MODE", "NOTIFY_EMAIL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "db/cases.db", cfg.DBPath)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, int64(DefaultMaxUploadBytes), cfg.MaxUploadBytes)
	assert.Equal(t, "password", cfg.DefaultAdminPassword)
	assert.True(t, cfg.EmailTestMode)
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.UsesR2())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("EMAIL_TEST_MODE", "off")
	t.Setenv("DEFAULT_ADMIN_PASSWORD", "s3cret-admin")
	t.Setenv("R2_ACCOUNT_ID", "acct")
	t.Setenv("R2_ACCESS_KEY_ID", "key")
	t.Setenv("R2_SECRET_ACCESS_KEY", "secret")
	t.Setenv("R2_BUCKET_NAME", "cases")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
	assert.False(t, cfg.EmailTestMode)
	assert.True(t, cfg.UsesR2())
}

func TestGetEnvInt64Invalid(t *testing.T) {
	t.Setenv("MAX_UPLOAD_BYTES", "lots")
	assert.Equal(t, int64(42), getEnvInt64("MAX_UPLOAD_BYTES", 42))

	t.Setenv("MAX_UPLOAD_BYTES", "-5")
	assert.Equal(t, int64(42), getEnvInt64("MAX_UPLOAD_BYTES", 42))
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"1", true},
		{"YES", true},
		{"off", false},
		{"0", false},
		{"maybe", true}, // falls back to the default
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("FLAG", tt.value)
			assert.Equal(t, tt.want, getEnvBool("FLAG", true))
		})
	}
}

func TestValidateAdminPassword(t *testing.T) {
	require.Error(t, ValidateAdminPassword("short", "development"))
	assert.NoError(t, ValidateAdminPassword("password", "development"))
	assert.NoError(t, ValidateAdminPassword("password", "production"))
	assert.NoError(t, ValidateAdminPassword("a-long-one", "production"))
}
