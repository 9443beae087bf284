package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskgrid/internal/config"
)

func TestNewConfig_Validation(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr []string
	}{
		{name: "zero value is valid", cfg: Config{}},
		{name: "all fields set", cfg: Config{LogLevel: "warn", LogFormat: "json", Workers: 4, HealthcheckPort: 8080}},
		{name: "bad level", cfg: Config{LogLevel: "verbose"}, wantErr: []string{`invalid log level "verbose"`}},
		{name: "bad format and negative workers", cfg: Config{LogFormat: "xml", Workers: -2}, wantErr: []string{`invalid log format "xml"`, "workers must not be negative, got -2"}},
		{name: "port out of range", cfg: Config{HealthcheckPort: 70000}, wantErr: []string{"healthcheck port 70000 is out of range"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NewConfig(tc.cfg)
			if len(tc.wantErr) == 0 {
				require.NoError(t, err)
				assert.Equal(t, tc.cfg, *got)
				return
			}
			require.Error(t, err)
			for _, msg := range tc.wantErr {
				assert.Contains(t, err.Error(), msg)
			}
		})
	}
}

func TestConfig_Merge(t *testing.T) {
	settings := config.Settings{
		LogLevel:       "debug",
		LogFormat:      "json",
		Workers:        3,
		DOTOutput:      "file.dot",
		SnapshotOutput: "file.yaml",
	}

	t.Run("flags win over file settings", func(t *testing.T) {
		flags := Config{LogLevel: "error", Workers: 8, DOTOutput: "flag.dot"}
		got := flags.merge(settings)

		assert.Equal(t, "error", got.LogLevel)
		assert.Equal(t, "json", got.LogFormat)
		assert.Equal(t, 8, got.Workers)
		assert.Equal(t, "flag.dot", got.DOTOutput)
		assert.Equal(t, "file.yaml", got.SnapshotOutput)
	})

	t.Run("defaults fill what nobody set", func(t *testing.T) {
		got := Config{}.merge(config.Settings{})

		assert.Equal(t, defaultLogLevel, got.LogLevel)
		assert.Equal(t, defaultLogFormat, got.LogFormat)
		assert.Equal(t, defaultWorkers, got.Workers)
		assert.Zero(t, got.HealthcheckPort)
		assert.Empty(t, got.DOTOutput)
	})
}
