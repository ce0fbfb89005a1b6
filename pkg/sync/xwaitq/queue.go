package xwaitq

import (
	"container/heap"
	"container/list"
)

// Queue 定义排队纪律。
//
// 实现不需要并发安全：所有方法都在 List 的 guard 下调用。
// Pop 必须返回下一个应被授予的等待者，队列为空时返回 nil。
// Remove 在 w 不在队列中时返回 false。
type Queue[T any] interface {
	Len() int
	Push(w *Waiter[T])
	Pop() *Waiter[T]
	Remove(w *Waiter[T]) bool
}

// 编译期接口检查。
var (
	_ Queue[int] = (*FIFO[int])(nil)
	_ Queue[int] = (*Priority[int])(nil)
)

// FIFO 按入队顺序授予。零值可用。
type FIFO[T any] struct {
	l list.List
}

// NewFIFO 创建 FIFO 队列。
func NewFIFO[T any]() *FIFO[T] {
	return &FIFO[T]{}
}

// Len 返回队列长度。
func (q *FIFO[T]) Len() int { return q.l.Len() }

// Push 将 w 追加到队尾。
func (q *FIFO[T]) Push(w *Waiter[T]) {
	w.elem = q.l.PushBack(w)
}

// Pop 取出队首。
func (q *FIFO[T]) Pop() *Waiter[T] {
	front := q.l.Front()
	if front == nil {
		return nil
	}
	w := q.l.Remove(front).(*Waiter[T])
	w.elem = nil
	return w
}

// Remove 移除 w，保持其余等待者的相对顺序。
func (q *FIFO[T]) Remove(w *Waiter[T]) bool {
	if w.elem == nil {
		return false
	}
	q.l.Remove(w.elem)
	w.elem = nil
	return true
}

// Priority 按优先级授予：数值越大越先，同优先级按入队顺序。零值可用。
type Priority[T any] struct {
	h waiterHeap[T]
}

// NewPriority 创建优先级队列。
func NewPriority[T any]() *Priority[T] {
	return &Priority[T]{}
}

// Len 返回队列长度。
func (q *Priority[T]) Len() int { return len(q.h) }

// Push 按优先级插入 w。
func (q *Priority[T]) Push(w *Waiter[T]) {
	heap.Push(&q.h, w)
}

// Pop 取出优先级最高且最早入队的等待者。
func (q *Priority[T]) Pop() *Waiter[T] {
	if len(q.h) == 0 {
		return nil
	}
	return heap.Pop(&q.h).(*Waiter[T])
}

// Remove 移除 w。
func (q *Priority[T]) Remove(w *Waiter[T]) bool {
	i := w.index
	if i < 0 || i >= len(q.h) || q.h[i] != w {
		return false
	}
	heap.Remove(&q.h, i)
	return true
}

// waiterHeap 实现 heap.Interface，维护 Waiter.index。
type waiterHeap[T any] []*Waiter[T]

func (h waiterHeap[T]) Len() int { return len(h) }

func (h waiterHeap[T]) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority > h[j].priority
	}
	return h[i].seq < h[j].seq
}

func (h waiterHeap[T]) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *waiterHeap[T]) Push(x any) {
	w := x.(*Waiter[T])
	w.index = len(*h)
	*h = append(*h, w)
}

func (h *waiterHeap[T]) Pop() any {
	old := *h
	n := len(old)
	w := old[n-1]
	old[n-1] = nil
	w.index = -1
	*h = old[:n-1]
	return w
}
