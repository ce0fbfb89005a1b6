package lockbench

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreAnyFunction("gopkg.in/natefinch/lumberjack%2ev2.(*Logger).millRun"),
	)
}

func TestDefaultConfigValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestLoadBytesYAML(t *testing.T) {
	data := []byte(`
workers: 16
duration: 2s
hold: 1ms
mode: async
queue: priority
log:
  level: debug
  file: /tmp/bench.log
`)
	cfg, err := LoadBytes(data, FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.Workers)
	assert.Equal(t, 2*time.Second, cfg.Duration)
	assert.Equal(t, time.Millisecond, cfg.Hold)
	assert.Equal(t, ModeAsync, cfg.Mode)
	assert.Equal(t, QueuePriority, cfg.Queue)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/bench.log", cfg.Log.File)

	// 未出现的字段保留默认值
	def := DefaultConfig()
	assert.Equal(t, def.Timeout, cfg.Timeout)
	assert.Equal(t, def.Format, cfg.Format)
	assert.Equal(t, def.Log.MaxSizeMB, cfg.Log.MaxSizeMB)
}

func TestLoadBytesJSON(t *testing.T) {
	data := []byte(`{"workers": 3, "timeout": "250ms", "format": "json", "metrics": true}`)
	cfg, err := LoadBytes(data, FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 250*time.Millisecond, cfg.Timeout)
	assert.Equal(t, OutputJSON, cfg.Format)
	assert.True(t, cfg.Metrics)
}

func TestLoadBytesEmpty(t *testing.T) {
	cfg, err := LoadBytes(nil, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadBytesErrors(t *testing.T) {
	_, err := LoadBytes([]byte("workers: 1"), Format("toml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = LoadBytes([]byte("{not json"), FormatJSON)
	assert.ErrorIs(t, err, ErrLoadFailed)

	_, err = LoadBytes([]byte("duration: soon"), FormatYAML)
	assert.ErrorIs(t, err, ErrLoadFailed)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "bench.yml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 2\n"), 0o600))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)

	_, err = Load(filepath.Join(dir, "bench.ini"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrLoadFailed)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"too many workers", func(c *Config) { c.Workers = maxWorkers + 1 }},
		{"zero duration", func(c *Config) { c.Duration = 0 }},
		{"negative hold", func(c *Config) { c.Hold = -time.Millisecond }},
		{"negative timeout", func(c *Config) { c.Timeout = -1 }},
		{"unknown mode", func(c *Config) { c.Mode = "spin" }},
		{"unknown queue", func(c *Config) { c.Queue = "lifo" }},
		{"unknown format", func(c *Config) { c.Format = "xml" }},
		{"unknown log level", func(c *Config) { c.Log.Level = "verbose" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
