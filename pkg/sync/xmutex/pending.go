package xmutex

import (
	"errors"

	"github.com/omeyang/xlock/pkg/sync/xwaitq"
)

// ErrDiscarded 是 Discard 取消排队请求时使用的原因。
var ErrDiscarded = errors.New("xmutex: pending discarded")

// closedDone 供已完成的 Pending 复用。
var closedDone = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Pending 是 AcquireAsync 返回的异步句柄。
//
// 已完成的 Pending（锁空闲时立即授予，或立即失败）不持有等待者。
// 零值 Pending 视为已完成，Wait 返回零值 Handle 与 nil。
type Pending struct {
	m   *Mutex
	w   *xwaitq.Waiter[Handle]
	h   Handle
	err error
}

// Done 返回一个在结果就绪时关闭的 channel，可用于 select。
func (p Pending) Done() <-chan struct{} {
	if p.w == nil {
		return closedDone
	}
	return p.w.Done()
}

// Ready 报告结果是否就绪。
func (p Pending) Ready() bool {
	if p.w == nil {
		return true
	}
	return p.w.Ready()
}

// Wait 阻塞直到结果就绪，返回 Handle 或取消错误。
func (p Pending) Wait() (Handle, error) {
	if p.w == nil {
		return p.h, p.err
	}
	return p.w.Wait()
}

// Discard 放弃该请求且不泄漏所有权：
// 仍在排队则以 [ErrDiscarded] 取消；已被授予则立即 Unlock。
// 对已 Wait 并自行 Unlock 过的 Pending 调用 Discard 是安全的空操作。
func (p Pending) Discard() {
	if p.w == nil {
		if p.err == nil && p.h.m != nil {
			_ = p.h.m.release(p.h, false)
		}
		return
	}

	p.m.mu.Lock()
	canceled := p.m.waiters.Cancel(p.w, ErrDiscarded)
	p.m.mu.Unlock()
	if canceled {
		return
	}
	if h, err := p.w.Wait(); err == nil {
		_ = p.m.release(h, false)
	}
}
