package lockbench

import (
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewLogger 按配置构建日志记录器。
// 配置了 Log.File 时写入按大小轮转的文件，否则写 stderr。
// 返回的 io.Closer 在运行结束时关闭日志文件。
func NewLogger(cfg Config, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	lvl, err := cfg.Log.level()
	if err != nil {
		return nil, nil, err
	}

	w, closer := stderr, io.Closer(nopCloser{})
	if cfg.Log.File != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAgeDays,
			Compress:   cfg.Log.Compress,
		}
		w, closer = lj, lj
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	if cfg.Format == OutputJSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h), closer, nil
}
