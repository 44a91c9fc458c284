package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Secret = "s3cr3t"
	return cfg
}

func TestDefaultConfigVerifies(t *testing.T) {
	require.NoError(t, validConfig().Verify())
}

func TestVerify(t *testing.T) {
	testcases := map[string]struct {
		mutate  func(*Config)
		wantErr string
	}{
		"missing_secret": {
			mutate:  func(c *Config) { c.Secret = "" },
			wantErr: "secret",
		},
		"zero_chunk_size": {
			mutate:  func(c *Config) { c.ChunkSize = 0 },
			wantErr: "chunkSize",
		},
		"negative_chunk_size": {
			mutate:  func(c *Config) { c.ChunkSize = -3 },
			wantErr: "chunkSize",
		},
		"negative_ttl": {
			mutate:  func(c *Config) { c.CursorTTL = -time.Minute },
			wantErr: "cursorTTL",
		},
		"zero_max_keys": {
			mutate:  func(c *Config) { c.MaxKeysPerRequest = 0 },
			wantErr: "maxKeysPerRequest",
		},
		"zero_max_cursor_size": {
			mutate:  func(c *Config) { c.MaxCursorSize = 0 },
			wantErr: "maxCursorSize",
		},
		"zero_concurrency": {
			mutate:  func(c *Config) { c.EvaluationConcurrency = 0 },
			wantErr: "evaluationConcurrency",
		},
		"negative_part_timeout": {
			mutate:  func(c *Config) { c.PartTimeout = -time.Second },
			wantErr: "partTimeout",
		},
		"bad_log_format": {
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: "log.format",
		},
		"bad_log_level": {
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: "log.level",
		},
	}

	for name, tc := range testcases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Verify()
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}
