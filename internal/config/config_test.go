// AngelaMos | 2026
// config_test.go

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/postgate")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("JWT_SECRET", testSecret)
}

func TestLoad_DefaultsAndEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_ACCESS_TOKEN_EXPIRE", "2h")
	t.Setenv("PORT", "9090")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/postgate", cfg.Database.URL)
	assert.Equal(t, testSecret, cfg.JWT.Secret)
	assert.Equal(t, 2*time.Hour, cfg.JWT.AccessTokenExpire)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, uint32(64*1024), cfg.Security.ArgonMemoryKiB)
	assert.Equal(t, 30*time.Second, cfg.Cache.PublicFeedTTL)
	assert.False(t, cfg.Admin.SeedAdmin())
}

func TestLoad_File(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("app:\n  environment: staging\nlog:\n  format: text\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.App.Environment)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing secret",
			env:  map[string]string{"JWT_SECRET": ""},
		},
		{
			name: "short secret",
			env:  map[string]string{"JWT_SECRET": "too-short"},
		},
		{
			name: "non positive ttl",
			env:  map[string]string{"JWT_ACCESS_TOKEN_EXPIRE": "0s"},
		},
		{
			name: "admin email without password",
			env:  map[string]string{"ADMIN_EMAIL": "root@example.com"},
		},
		{
			name: "argon memory below parallelism floor",
			env:  map[string]string{"ARGON_MEMORY_KIB": "16"},
		},
		{
			name: "missing database",
			env:  map[string]string{"DATABASE_URL": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load("")
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestAdminConfig_SeedAdmin(t *testing.T) {
	a := AdminConfig{Email: "root@example.com", Password: "secret-pass"}
	assert.True(t, a.SeedAdmin())

	a.Password = ""
	assert.False(t, a.SeedAdmin())
}
