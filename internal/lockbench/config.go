package lockbench

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Format 配置文件格式。
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// 获取方式
const (
	ModeBlocking = "blocking"
	ModeAsync    = "async"
	ModeTry      = "try"
	ModeMixed    = "mixed"
)

// 排队纪律
const (
	QueueFIFO     = "fifo"
	QueuePriority = "priority"
)

// 报告格式
const (
	OutputText = "text"
	OutputJSON = "json"
)

const maxWorkers = 10000

// Config 是一次压测的全部参数。
type Config struct {
	Workers  int           `koanf:"workers"`
	Duration time.Duration `koanf:"duration"`
	// Hold 是每次获得锁后在临界区停留的时间。
	Hold time.Duration `koanf:"hold"`
	// Timeout 是单次排队的超时，0 表示只受运行时长约束。
	Timeout time.Duration `koanf:"timeout"`
	Mode    string        `koanf:"mode"`
	Queue   string        `koanf:"queue"`
	Format  string        `koanf:"format"`
	Metrics bool          `koanf:"metrics"`
	Log     LogConfig     `koanf:"log"`
}

// LogConfig 日志输出配置。File 为空时写 stderr。
type LogConfig struct {
	File       string `koanf:"file"`
	Level      string `koanf:"level"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Compress   bool   `koanf:"compress"`
}

// DefaultConfig 返回默认配置。
func DefaultConfig() Config {
	return Config{
		Workers:  8,
		Duration: 5 * time.Second,
		Hold:     50 * time.Microsecond,
		Timeout:  100 * time.Millisecond,
		Mode:     ModeMixed,
		Queue:    QueueFIFO,
		Format:   OutputText,
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
	}
}

// Load 从文件加载配置，未出现的字段保留默认值。格式由扩展名决定。
func Load(path string) (Config, error) {
	format, err := detectFormat(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	return LoadBytes(data, format)
}

// LoadBytes 从字节数据加载配置。空数据得到默认配置。
func LoadBytes(data []byte, format Format) (Config, error) {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	cfg := DefaultConfig()
	if len(data) == 0 {
		return cfg, nil
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	return cfg, nil
}

func detectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
}

// Validate 校验配置取值。
func (c Config) Validate() error {
	switch {
	case c.Workers <= 0 || c.Workers > maxWorkers:
		return fmt.Errorf("%w: workers must be in [1, %d], got %d", ErrInvalidConfig, maxWorkers, c.Workers)
	case c.Duration <= 0:
		return fmt.Errorf("%w: duration must be positive, got %s", ErrInvalidConfig, c.Duration)
	case c.Hold < 0:
		return fmt.Errorf("%w: hold must not be negative, got %s", ErrInvalidConfig, c.Hold)
	case c.Timeout < 0:
		return fmt.Errorf("%w: timeout must not be negative, got %s", ErrInvalidConfig, c.Timeout)
	case !slices.Contains([]string{ModeBlocking, ModeAsync, ModeTry, ModeMixed}, c.Mode):
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, c.Mode)
	case !slices.Contains([]string{QueueFIFO, QueuePriority}, c.Queue):
		return fmt.Errorf("%w: unknown queue %q", ErrInvalidConfig, c.Queue)
	case !slices.Contains([]string{OutputText, OutputJSON}, c.Format):
		return fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, c.Format)
	}
	if _, err := c.Log.level(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (c LogConfig) level() (slog.Level, error) {
	var lvl slog.Level
	if c.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(c.Level)); err != nil {
		return 0, err
	}
	return lvl, nil
}
