package xwaitq

import "container/list"

// Waiter 表示一个挂起的请求，完成时携带值 T 或取消错误。
//
// Waiter 只会被完成一次。完成后 Done 返回的 channel 被关闭，
// 之后 Result 的返回值固定不变。
type Waiter[T any] struct {
	done chan struct{}
	val  T
	err  error

	// stop 解除 context 取消回调，由 List.Enqueue 设置。
	stop func() bool

	seq      uint64
	priority int

	// 以下字段只由内置 Queue 实现在 guard 下读写。
	elem  *list.Element // FIFO 中的位置，不在队列中时为 nil
	index int           // Priority 堆下标，不在队列中时为 -1
}

func newWaiter[T any](seq uint64, priority int) *Waiter[T] {
	return &Waiter[T]{
		done:     make(chan struct{}),
		seq:      seq,
		priority: priority,
		index:    -1,
	}
}

// Done 返回一个在等待者完成时关闭的 channel。
func (w *Waiter[T]) Done() <-chan struct{} {
	return w.done
}

// Wait 阻塞直到等待者完成，返回授予的值或取消错误。
func (w *Waiter[T]) Wait() (T, error) {
	<-w.done
	return w.val, w.err
}

// Ready 报告等待者是否已完成。
func (w *Waiter[T]) Ready() bool {
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

// Result 返回完成结果，不阻塞。未完成时返回零值和 nil。
func (w *Waiter[T]) Result() (T, error) {
	if !w.Ready() {
		var zero T
		return zero, nil
	}
	return w.val, w.err
}

// Seq 返回入队序号，同一 List 内严格递增。
func (w *Waiter[T]) Seq() uint64 {
	return w.seq
}

// Priority 返回入队时从 context 读取的优先级。
func (w *Waiter[T]) Priority() int {
	return w.priority
}

// complete 完成等待者。调用方必须持有 guard，且等待者已离开队列。
func (w *Waiter[T]) complete(v T, err error) {
	w.val = v
	w.err = err
	close(w.done)
}
