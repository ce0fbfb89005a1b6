package xkeylock

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/omeyang/xlock/pkg/sync/xmutex"
	"github.com/omeyang/xlock/pkg/sync/xwaitq"
)

func BenchmarkAcquireUnlock(b *testing.B) {
	kl := newForTest(b)
	defer kl.Close()

	ctx := context.Background()

	b.ReportAllocs()
	for b.Loop() {
		h, err := kl.Acquire(ctx, "key")
		if err != nil {
			b.Fatal(err)
		}
		_ = h.Unlock()
	}
}

func BenchmarkTryAcquireUnlock(b *testing.B) {
	kl := newForTest(b)
	defer kl.Close()

	b.ReportAllocs()
	for b.Loop() {
		h, err := kl.TryAcquire("key")
		if err != nil {
			b.Fatal(err)
		}
		_ = h.Unlock()
	}
}

func BenchmarkAcquireUnlockParallel(b *testing.B) {
	// 预计算 key 数组，避免 fmt.Sprintf 在热路径上影响基准结果。
	const numKeys = 100
	keys := make([]string, numKeys)
	for i := range keys {
		keys[i] = fmt.Sprintf("key-%d", i)
	}

	for _, shards := range []int{1, 16, 32, 64} {
		b.Run(fmt.Sprintf("shards=%d", shards), func(b *testing.B) {
			kl := newForTest(b, WithShardCount(shards))
			defer kl.Close()

			ctx := context.Background()
			b.RunParallel(func(pb *testing.PB) {
				i := 0
				for pb.Next() {
					h, err := kl.Acquire(ctx, keys[i%numKeys])
					if err != nil {
						continue
					}
					_ = h.Unlock()
					i++
				}
			})
		})
	}
}

func BenchmarkGetOrCreate(b *testing.B) {
	kl, ok := newForTest(b).(*keyLockImpl)
	if !ok {
		b.Fatal("unexpected Locker implementation")
	}
	defer kl.Close()

	for b.Loop() {
		entry, err := kl.getOrCreate("key")
		if err != nil {
			b.Fatal(err)
		}
		kl.releaseRef("key", entry)
	}
}

// BenchmarkContendedHandoff 所有 goroutine 争用同一个 key，释放时直接交接给队首。
func BenchmarkContendedHandoff(b *testing.B) {
	queues := []struct {
		name string
		opts []Option
	}{
		{"fifo", nil},
		{"priority", []Option{WithQueue(func() xwaitq.Queue[xmutex.Handle] {
			return xwaitq.NewPriority[xmutex.Handle]()
		})}},
	}
	for _, q := range queues {
		b.Run(q.name, func(b *testing.B) {
			kl := newForTest(b, q.opts...)
			defer kl.Close()

			var seq atomic.Int64
			b.ReportAllocs()
			b.SetParallelism(4)
			b.RunParallel(func(pb *testing.PB) {
				ctx := xwaitq.WithPriority(context.Background(), int(seq.Add(1)%4))
				for pb.Next() {
					h, err := kl.Acquire(ctx, "hot")
					if err != nil {
						b.Error(err)
						return
					}
					_ = h.Unlock()
				}
			})
		})
	}
}

// BenchmarkAcquireWithDeadline 竞争路径上每次获取都挂接调用方 deadline 与 Close。
func BenchmarkAcquireWithDeadline(b *testing.B) {
	kl := newForTest(b)
	defer kl.Close()

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			h, err := kl.Acquire(ctx, "hot")
			cancel()
			if err != nil {
				b.Error(err)
				return
			}
			_ = h.Unlock()
		}
	})
}
