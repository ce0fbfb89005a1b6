package xwaitq

import (
	"context"
	"sync"
)

// List 在排队纪律之上实现等待契约。
//
// 所有方法都必须在 guard 下调用。guard 同时被 context 取消回调使用，
// 这是 Grant 与 Cancel 之间唯一的串行化点。
type List[T any] struct {
	q     Queue[T]
	guard sync.Locker
	seq   uint64

	// OnCancel 在等待者被取消后调用（仍持有 guard），可为 nil。
	// 只应做常数时间的记录，不得阻塞或再次获取 guard。
	OnCancel func(cause error)
}

// NewList 创建等待列表。q 为 nil 时使用 FIFO。
func NewList[T any](q Queue[T], guard sync.Locker) *List[T] {
	if guard == nil {
		panic("xwaitq: nil guard")
	}
	if q == nil {
		q = NewFIFO[T]()
	}
	return &List[T]{q: q, guard: guard}
}

// Len 返回排队中的等待者数量。
func (l *List[T]) Len() int {
	return l.q.Len()
}

// Empty 报告是否没有等待者。
func (l *List[T]) Empty() bool {
	return l.q.Len() == 0
}

// Enqueue 创建等待者并入队，同时挂接 ctx 的取消。
//
// ctx 取消时，回调会获取 guard 并调用 Cancel；若此时等待者已被 Grant，
// 回调为空操作。调用方应在入队前自行处理 ctx 已取消的情况。
func (l *List[T]) Enqueue(ctx context.Context) *Waiter[T] {
	l.seq++
	w := newWaiter[T](l.seq, PriorityFrom(ctx))
	l.q.Push(w)
	w.stop = context.AfterFunc(ctx, func() {
		l.guard.Lock()
		defer l.guard.Unlock()
		l.Cancel(w, context.Cause(ctx))
	})
	return w
}

// Grant 取出下一个等待者并以 v 完成它。队列为空时返回 false。
func (l *List[T]) Grant(v T) bool {
	w := l.q.Pop()
	if w == nil {
		return false
	}
	if w.stop != nil {
		w.stop()
	}
	w.complete(v, nil)
	return true
}

// Cancel 若 w 仍在队列中则移除它，并以包装了 cause 的 [ErrCanceled] 完成。
// w 已被授予或已取消时返回 false。
func (l *List[T]) Cancel(w *Waiter[T], cause error) bool {
	if !l.q.Remove(w) {
		return false
	}
	if w.stop != nil {
		w.stop()
	}
	var zero T
	w.complete(zero, CanceledError(cause))
	if l.OnCancel != nil {
		l.OnCancel(cause)
	}
	return true
}
