package xwaitq

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// guardedList 把 List 与它的 guard 放在一起，方便测试在锁内调用。
type guardedList struct {
	mu sync.Mutex
	l  *List[int]
}

func newGuardedList(q Queue[int]) *guardedList {
	g := &guardedList{}
	g.l = NewList(q, &g.mu)
	return g
}

func (g *guardedList) enqueue(ctx context.Context) *Waiter[int] {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.l.Enqueue(ctx)
}

func (g *guardedList) grant(v int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.l.Grant(v)
}

func (g *guardedList) cancel(w *Waiter[int], cause error) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.l.Cancel(w, cause)
}

func (g *guardedList) len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.l.Len()
}

func TestNewListNilGuard(t *testing.T) {
	assert.PanicsWithValue(t, "xwaitq: nil guard", func() {
		NewList[int](nil, nil)
	})
}

func TestListGrantInEnqueueOrder(t *testing.T) {
	g := newGuardedList(nil)

	w1 := g.enqueue(context.Background())
	w2 := g.enqueue(context.Background())
	w3 := g.enqueue(context.Background())
	assert.Equal(t, 3, g.len())

	require.True(t, g.grant(10))
	assert.True(t, w1.Ready())
	assert.False(t, w2.Ready())
	assert.False(t, w3.Ready())

	require.True(t, g.grant(20))
	require.True(t, g.grant(30))
	assert.False(t, g.grant(40), "grant on empty list")

	for i, w := range []*Waiter[int]{w1, w2, w3} {
		v, err := w.Wait()
		require.NoError(t, err)
		assert.Equal(t, (i+1)*10, v)
	}
	assert.True(t, g.l.Empty())
}

func TestListResultBeforeCompletion(t *testing.T) {
	g := newGuardedList(nil)
	w := g.enqueue(context.Background())

	v, err := w.Result()
	assert.Zero(t, v)
	assert.NoError(t, err)
	assert.False(t, w.Ready())

	require.True(t, g.grant(7))
	v, err = w.Result()
	assert.Equal(t, 7, v)
	assert.NoError(t, err)
}

func TestListCancelKeepsOrder(t *testing.T) {
	g := newGuardedList(nil)

	w1 := g.enqueue(context.Background())
	w2 := g.enqueue(context.Background())
	w3 := g.enqueue(context.Background())

	require.True(t, g.cancel(w2, nil))
	assert.False(t, g.cancel(w2, nil), "second cancel is a no-op")

	_, err := w2.Wait()
	assert.ErrorIs(t, err, ErrCanceled)

	require.True(t, g.grant(1))
	require.True(t, g.grant(3))

	v, err := w1.Wait()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	v, err = w3.Wait()
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.Equal(t, 0, g.len())
}

func TestListCancelAfterGrant(t *testing.T) {
	g := newGuardedList(nil)
	w := g.enqueue(context.Background())

	require.True(t, g.grant(5))
	assert.False(t, g.cancel(w, context.Canceled))

	v, err := w.Wait()
	require.NoError(t, err)
	assert.Equal(t, 5, v)
}

func TestListContextCancel(t *testing.T) {
	g := newGuardedList(nil)

	ctx, cancel := context.WithCancel(context.Background())
	w := g.enqueue(ctx)
	other := g.enqueue(context.Background())

	cancel()

	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("waiter not completed after context cancel")
	}
	_, err := w.Wait()
	assert.ErrorIs(t, err, ErrCanceled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, g.len())

	require.True(t, g.grant(9))
	v, err := other.Wait()
	require.NoError(t, err)
	assert.Equal(t, 9, v)
}

func TestListContextDeadline(t *testing.T) {
	g := newGuardedList(nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	w := g.enqueue(ctx)
	_, err := w.Wait()
	assert.ErrorIs(t, err, ErrCanceled)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, g.len())
}

func TestListContextCause(t *testing.T) {
	g := newGuardedList(nil)
	errShutdown := errors.New("shutdown")

	ctx, cancel := context.WithCancelCause(context.Background())
	w := g.enqueue(ctx)
	cancel(errShutdown)

	_, err := w.Wait()
	assert.ErrorIs(t, err, ErrCanceled)
	assert.ErrorIs(t, err, errShutdown)
}

func TestListGrantDetachesContext(t *testing.T) {
	g := newGuardedList(nil)

	ctx, cancel := context.WithCancel(context.Background())
	w := g.enqueue(ctx)
	require.True(t, g.grant(1))

	// 授予之后的取消不会改变结果。
	cancel()
	time.Sleep(5 * time.Millisecond)

	v, err := w.Wait()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestListOnCancel(t *testing.T) {
	g := newGuardedList(nil)

	var causes []error
	g.l.OnCancel = func(cause error) {
		causes = append(causes, cause)
	}

	w := g.enqueue(context.Background())
	require.True(t, g.cancel(w, context.DeadlineExceeded))

	g.mu.Lock()
	defer g.mu.Unlock()
	require.Len(t, causes, 1)
	assert.ErrorIs(t, causes[0], context.DeadlineExceeded)
}

// TestListCancelGrantRace 验证取消与授予竞争同一等待者时恰好一方生效。
func TestListCancelGrantRace(t *testing.T) {
	g := newGuardedList(nil)

	for i := range 500 {
		ctx, cancel := context.WithCancel(context.Background())
		w := g.enqueue(ctx)

		var granted bool
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			cancel()
		}()
		go func() {
			defer wg.Done()
			granted = g.grant(i)
		}()
		wg.Wait()

		v, err := w.Wait()
		if granted {
			require.NoError(t, err, "iteration %d", i)
			assert.Equal(t, i, v)
		} else {
			require.ErrorIs(t, err, ErrCanceled, "iteration %d", i)
		}
		require.Equal(t, 0, g.len(), "iteration %d", i)
	}
}

func TestListPriorityQueue(t *testing.T) {
	g := newGuardedList(NewPriority[int]())

	low := g.enqueue(WithPriority(context.Background(), 1))
	high := g.enqueue(WithPriority(context.Background(), 10))
	plain := g.enqueue(context.Background())

	require.True(t, g.grant(1))
	require.True(t, g.grant(2))
	require.True(t, g.grant(3))

	v, _ := high.Wait()
	assert.Equal(t, 1, v)
	v, _ = low.Wait()
	assert.Equal(t, 2, v)
	v, _ = plain.Wait()
	assert.Equal(t, 3, v)
}

func TestCanceledError(t *testing.T) {
	assert.Same(t, ErrCanceled, CanceledError(nil))

	err := CanceledError(context.Canceled)
	assert.ErrorIs(t, err, ErrCanceled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "xwaitq: wait canceled: context canceled", err.Error())
}

func TestPriorityFrom(t *testing.T) {
	assert.Equal(t, 0, PriorityFrom(context.Background()))
	assert.Equal(t, 0, PriorityFrom(nil)) //nolint:staticcheck // nil ctx 归一化
	assert.Equal(t, -3, PriorityFrom(WithPriority(context.Background(), -3)))
}

func TestWaiterSeqAndPriority(t *testing.T) {
	g := newGuardedList(NewPriority[int]())

	ctx := context.Background()
	w1 := g.enqueue(ctx)
	w2 := g.enqueue(WithPriority(ctx, 7))
	w3 := g.enqueue(WithPriority(ctx, -2))

	assert.Less(t, w1.Seq(), w2.Seq())
	assert.Less(t, w2.Seq(), w3.Seq())
	assert.Equal(t, 0, w1.Priority())
	assert.Equal(t, 7, w2.Priority())
	assert.Equal(t, -2, w3.Priority())

	for range 3 {
		require.True(t, g.grant(0))
	}
}
