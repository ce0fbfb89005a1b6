package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xlock/internal/lockbench"
)

func createRunCommand() *cli.Command {
	def := lockbench.DefaultConfig()
	return &cli.Command{
		Name:  "run",
		Usage: "运行一次压测",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML/JSON 配置文件"},
			&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "并发 worker 数", Value: def.Workers},
			&cli.DurationFlag{Name: "duration", Aliases: []string{"d"}, Usage: "运行时长", Value: def.Duration},
			&cli.DurationFlag{Name: "hold", Usage: "每次持有锁的时间", Value: def.Hold},
			&cli.DurationFlag{Name: "timeout", Usage: "单次排队超时，0 表示不限", Value: def.Timeout},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Usage: "获取方式 blocking|async|try|mixed", Value: def.Mode},
			&cli.StringFlag{Name: "queue", Aliases: []string{"q"}, Usage: "排队纪律 fifo|priority", Value: def.Queue},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "报告格式 text|json", Value: def.Format},
			&cli.StringFlag{Name: "log-file", Usage: "日志文件（按大小轮转）"},
			&cli.StringFlag{Name: "log-level", Usage: "日志级别", Value: def.Log.Level},
			&cli.BoolFlag{Name: "metrics", Usage: "在报告中附带 OpenTelemetry 指标"},
		},
		Action: runAction,
	}
}

func createVersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "显示版本信息",
		Action: func(_ context.Context, cmd *cli.Command) error {
			_, err := fmt.Fprintf(cmd.Root().Writer, "xlockbench %s\ncommit: %s\nbuilt: %s\n",
				Version, GitCommit, BuildTime)
			return err
		},
	}
}

// loadConfig 读取配置文件（如有），再用显式设置的 flag 覆盖。
func loadConfig(cmd *cli.Command) (lockbench.Config, error) {
	cfg := lockbench.DefaultConfig()
	if path := cmd.String("config"); path != "" {
		var err error
		if cfg, err = lockbench.Load(path); err != nil {
			return cfg, err
		}
	}

	if cmd.IsSet("workers") {
		cfg.Workers = int(cmd.Int("workers"))
	}
	overrideDuration(cmd, "duration", &cfg.Duration)
	overrideDuration(cmd, "hold", &cfg.Hold)
	overrideDuration(cmd, "timeout", &cfg.Timeout)
	overrideString(cmd, "mode", &cfg.Mode)
	overrideString(cmd, "queue", &cfg.Queue)
	overrideString(cmd, "format", &cfg.Format)
	overrideString(cmd, "log-file", &cfg.Log.File)
	overrideString(cmd, "log-level", &cfg.Log.Level)
	if cmd.IsSet("metrics") {
		cfg.Metrics = cmd.Bool("metrics")
	}
	return cfg, cfg.Validate()
}

func overrideString(cmd *cli.Command, name string, dst *string) {
	if cmd.IsSet(name) {
		*dst = cmd.String(name)
	}
}

func overrideDuration(cmd *cli.Command, name string, dst *time.Duration) {
	if cmd.IsSet(name) {
		*dst = cmd.Duration(name)
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return &usageError{err: err}
	}

	logger, closer, err := lockbench.NewLogger(cfg, cmd.Root().ErrWriter)
	if err != nil {
		return &usageError{err: err}
	}
	defer func() { _ = closer.Close() }()

	runner, err := lockbench.NewRunner(cfg,
		lockbench.WithLogger(logger),
		lockbench.WithSignals(lockbench.DefaultSignals()...),
	)
	if err != nil {
		return &usageError{err: err}
	}

	rep, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	if err := rep.Write(cmd.Root().Writer, cfg.Format); err != nil {
		return err
	}
	return rep.Err()
}
