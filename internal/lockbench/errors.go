package lockbench

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrInvalidConfig 表示配置项取值非法。
	ErrInvalidConfig = errors.New("lockbench: invalid config")

	// ErrUnsupportedFormat 表示配置文件格式无法识别。
	ErrUnsupportedFormat = errors.New("lockbench: unsupported config format")

	// ErrLoadFailed 表示读取或解析配置失败。
	ErrLoadFailed = errors.New("lockbench: load config failed")

	// ErrExclusionViolated 表示压测期间观察到多个持有者同时进入临界区。
	ErrExclusionViolated = errors.New("lockbench: mutual exclusion violated")

	// ErrSignal 表示运行因系统信号提前结束。
	ErrSignal = errors.New("lockbench: received signal")
)

// SignalError 记录提前结束运行的信号。
type SignalError struct {
	Signal os.Signal
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("lockbench: received signal %s", e.Signal)
}

// Is 支持 errors.Is(err, ErrSignal)。
func (e *SignalError) Is(target error) bool {
	return target == ErrSignal
}
