package xwaitq

import (
	"errors"
	"fmt"
)

// ErrCanceled 表示等待者在被授予之前已取消。
var ErrCanceled = errors.New("xwaitq: wait canceled")

// CanceledError 返回包装了 cause 的 [ErrCanceled]。
// cause 为 nil 时返回 ErrCanceled 本身。
func CanceledError(cause error) error {
	if cause == nil {
		return ErrCanceled
	}
	return fmt.Errorf("%w: %w", ErrCanceled, cause)
}
