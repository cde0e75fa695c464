package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"SERVER_ADDRESS", "ENVIRONMENT", "AWS_REGION", "AWS_DEFAULT_REGION",
		"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "BLOB_SPILLOVER_BYTES",
		"LOG_LEVEL", "ENABLE_S3", "ENABLE_DYNAMODB", "ENABLE_TRACING", "ENABLE_CORS",
	} {
		os.Unsetenv(key)
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":4566", cfg.ServerAddress)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "us-east-1", cfg.Region)
	assert.Equal(t, int64(512*1024), cfg.BlobSpilloverBytes)
	assert.True(t, cfg.EnableS3)
	assert.True(t, cfg.EnableDynamoDB)
	assert.False(t, cfg.EnableTracing)
}

func TestLoadConfigRejectsBadEnvironment(t *testing.T) {
	os.Setenv("ENVIRONMENT", "carnival")
	defer os.Unsetenv("ENVIRONMENT")

	_, err := LoadConfig()
	require.Error(t, err)
}
