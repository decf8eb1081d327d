package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"PORT", "SECRET", "APP_ENV", "AWS_REGION", "AWS_ENDPOINT_URL",
	"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "S3_BUCKET",
	"FILES_TABLE", "LOGS_TABLE", "PRESIGN_EXPIRES_IN", "GEOIP_DB_PATH",
}

func validEnv() map[string]string {
	return map[string]string{
		"PORT":        "8080",
		"SECRET":      "mysecret",
		"APP_ENV":     "development",
		"AWS_REGION":  "us-east-1",
		"S3_BUCKET":   "esquad-files",
		"FILES_TABLE": "esquad-file-metadata",
		"LOGS_TABLE":  "esquad-file-logs",
	}
}

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(env map[string]string)
		check   func(t *testing.T, cfg *Config)
		wantErr bool
	}{
		{
			name:   "valid configuration",
			mutate: func(env map[string]string) {},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Port)
				assert.Equal(t, "development", cfg.Env)
				assert.Equal(t, "us-east-1", cfg.AWSRegion)
				assert.Equal(t, "esquad-files", cfg.S3Bucket)
				assert.Equal(t, "esquad-file-metadata", cfg.FilesTable)
				assert.Equal(t, "esquad-file-logs", cfg.LogsTable)
				assert.Equal(t, 5*time.Minute, cfg.PresignExpiry)
			},
		},
		{
			name:    "missing PORT",
			mutate:  func(env map[string]string) { delete(env, "PORT") },
			wantErr: true,
		},
		{
			name:    "negative PORT",
			mutate:  func(env map[string]string) { env["PORT"] = "-8080" },
			wantErr: true,
		},
		{
			name:    "missing SECRET",
			mutate:  func(env map[string]string) { delete(env, "SECRET") },
			wantErr: true,
		},
		{
			name:    "missing AWS_REGION",
			mutate:  func(env map[string]string) { delete(env, "AWS_REGION") },
			wantErr: true,
		},
		{
			name:    "missing S3_BUCKET",
			mutate:  func(env map[string]string) { delete(env, "S3_BUCKET") },
			wantErr: true,
		},
		{
			name:    "missing FILES_TABLE",
			mutate:  func(env map[string]string) { delete(env, "FILES_TABLE") },
			wantErr: true,
		},
		{
			name:    "missing LOGS_TABLE",
			mutate:  func(env map[string]string) { delete(env, "LOGS_TABLE") },
			wantErr: true,
		},
		{
			name:    "invalid PRESIGN_EXPIRES_IN",
			mutate:  func(env map[string]string) { env["PRESIGN_EXPIRES_IN"] = "soon" },
			wantErr: true,
		},
		{
			name:    "zero PRESIGN_EXPIRES_IN",
			mutate:  func(env map[string]string) { env["PRESIGN_EXPIRES_IN"] = "0s" },
			wantErr: true,
		},
		{
			name:   "custom PRESIGN_EXPIRES_IN",
			mutate: func(env map[string]string) { env["PRESIGN_EXPIRES_IN"] = "10m" },
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 10*time.Minute, cfg.PresignExpiry)
			},
		},
		{
			name:   "default environment is production",
			mutate: func(env map[string]string) { delete(env, "APP_ENV") },
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "production", cfg.Env)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range configKeys {
				require.NoError(t, os.Unsetenv(k))
			}
			env := validEnv()
			tt.mutate(env)
			for k, v := range env {
				require.NoError(t, os.Setenv(k, v))
			}
			t.Cleanup(func() {
				for _, k := range configKeys {
					_ = os.Unsetenv(k)
				}
			})

			cfg, err := NewConfig()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}
