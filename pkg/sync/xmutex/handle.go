package xmutex

// Handle 表示一次成功的锁获取（所有权令牌）。
//
// Handle 是指回锁的值类型，不携带每次获取的额外分配。
// 只有最近一次授予的 Handle 有效；Unlock 后它立即失效。
type Handle struct {
	m   *Mutex
	gen uint64
}

// Unlock 释放锁，有等待者时把所有权交给下一个等待者。
// Handle 已失效（重复 Unlock 或零值）时返回 [ErrNotHeld]，锁状态不变。
func (h Handle) Unlock() error {
	if h.m == nil {
		return ErrNotHeld
	}
	return h.m.release(h, true)
}

// Held 报告 h 是否仍是锁的当前持有者。
func (h Handle) Held() bool {
	if h.m == nil {
		return false
	}
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	return h.m.owned && h.m.gen == h.gen
}

// Mutex 返回 h 所属的锁，零值 Handle 返回 nil。
func (h Handle) Mutex() *Mutex {
	return h.m
}
