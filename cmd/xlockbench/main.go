// xlockbench 对 xmutex 进行并发压测，并校验互斥性。
//
// 用法:
//
//	xlockbench run [选项]
//	xlockbench version
//
// run 选项:
//
//	-c, --config     YAML/JSON 配置文件，命令行参数覆盖文件中的值
//	-w, --workers    并发 worker 数 (默认: 8)
//	-d, --duration   运行时长 (默认: 5s)
//	    --hold       每次持有锁的时间 (默认: 50µs)
//	    --timeout    单次排队超时，0 表示不限 (默认: 100ms)
//	-m, --mode       获取方式 blocking|async|try|mixed (默认: mixed)
//	-q, --queue      排队纪律 fifo|priority (默认: fifo)
//	-f, --format     报告格式 text|json (默认: text)
//	    --log-file   日志文件（按大小轮转），默认写 stderr
//	    --log-level  日志级别 debug|info|warn|error (默认: info)
//	    --metrics    在报告中附带 OpenTelemetry 指标
//
// 退出码:
//
//	0: 运行完成且未发现互斥被破坏
//	1: 运行失败或发现互斥被破坏
//	2: 参数或配置错误
//
// 示例:
//
//	xlockbench run -w 64 -d 10s --mode blocking
//	xlockbench run -c bench.yaml --format json --metrics
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
)

// 版本信息（可通过 -ldflags 注入）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stdout, os.Stderr))
}

// createApp 创建 CLI 应用。
func createApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "xlockbench",
		Usage:     "xmutex 并发压测工具",
		Version:   fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Writer:    stdout,
		ErrWriter: stderr,
		Commands: []*cli.Command{
			createRunCommand(),
			createVersionCommand(),
		},
		// 设计决策: 禁止 urfave/cli 直接调用 os.Exit，由 run() 统一映射退出码。
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(stderr, err)
			}
		},
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := createApp(stdout, stderr)
	err := app.Run(ctx, args)
	if err == nil {
		return exitOK
	}

	var usageErr *usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(stderr, "参数错误: %v\n", usageErr.err)
		return exitUsage
	}
	if isCLIUsageError(err) {
		fmt.Fprintf(stderr, "参数错误: %v\n", err)
		return exitUsage
	}
	fmt.Fprintf(stderr, "错误: %v\n", err)
	return exitFail
}

// usageError 标记参数或配置错误（退出码 2）。
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

// isCLIUsageError 识别 urfave/cli 自身产生的参数错误（未知 flag、flag 取值非法等）。
func isCLIUsageError(err error) bool {
	msg := err.Error()
	for _, prefix := range []string{
		"flag provided but not defined",
		"invalid value",
		"No help topic for",
	} {
		if strings.Contains(msg, prefix) {
			return true
		}
	}
	return false
}
