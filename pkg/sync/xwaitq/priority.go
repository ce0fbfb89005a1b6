package xwaitq

import "context"

type priorityKey struct{}

// WithPriority 返回携带等待优先级的 context。
// 只有 [Priority] 队列会使用该值，FIFO 忽略它。
func WithPriority(ctx context.Context, priority int) context.Context {
	return context.WithValue(ctx, priorityKey{}, priority)
}

// PriorityFrom 读取 ctx 中的等待优先级，未设置时返回 0。
func PriorityFrom(ctx context.Context) int {
	if ctx == nil {
		return 0
	}
	p, _ := ctx.Value(priorityKey{}).(int)
	return p
}
