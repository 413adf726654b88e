// Package dispatch 实现合并唤醒的串行事件投递
package dispatch

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// collector 线程安全地收集投递结果
type collector struct {
	mu    sync.Mutex
	items []int
}

func (c *collector) record(v int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, v)
}

func (c *collector) snapshot() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.items...)
}

func TestDispatcherDeliversInOrder(t *testing.T) {
	c := &collector{}
	d := New(c.record)
	defer d.Close()

	const n = 100
	want := make([]int, 0, n)
	for i := 0; i < n; i++ {
		d.Signal(i)
		want = append(want, i)
	}

	require.Eventually(t, func() bool {
		return len(c.snapshot()) == n
	}, time.Second, time.Millisecond)
	require.Equal(t, want, c.snapshot())
}

func TestDispatcherExactlyOnce(t *testing.T) {
	c := &collector{}
	d := New(c.record)
	defer d.Close()

	// 多协程并发入队，每个值只允许被投递一次
	const workers = 8
	const perWorker = 50
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				d.Signal(base + i)
			}
		}(w * perWorker)
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		return len(c.snapshot()) == workers*perWorker
	}, time.Second, time.Millisecond)

	seen := make(map[int]int)
	for _, v := range c.snapshot() {
		seen[v]++
	}
	require.Len(t, seen, workers*perWorker)
	for v, count := range seen {
		require.Equal(t, 1, count, "值 %d 被重复投递", v)
	}
}

func TestDispatcherHandlerNeverConcurrent(t *testing.T) {
	var inFlight atomic.Int32
	var maxSeen atomic.Int32
	var delivered atomic.Int32

	d := New(func(int) {
		cur := inFlight.Add(1)
		for {
			prev := maxSeen.Load()
			if cur <= prev || maxSeen.CompareAndSwap(prev, cur) {
				break
			}
		}
		time.Sleep(100 * time.Microsecond)
		inFlight.Add(-1)
		delivered.Add(1)
	})
	defer d.Close()

	const n = 200
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < n/4; i++ {
				d.Signal(i)
			}
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		return delivered.Load() == n
	}, 5*time.Second, time.Millisecond)
	require.Equal(t, int32(1), maxSeen.Load(), "处理函数被并发调用")
}

func TestDispatcherSignalDuringDeliveryComesAfter(t *testing.T) {
	gate := make(chan struct{})
	c := &collector{}
	d := New(func(v int) {
		if v == 1 {
			<-gate
		}
		c.record(v)
	})
	defer d.Close()

	d.Signal(1)
	// 等待投递协程取走第一批并阻塞在处理函数中
	require.Eventually(t, func() bool {
		d.mu.Lock()
		defer d.mu.Unlock()
		return len(d.queue) == 0
	}, time.Second, time.Millisecond)

	d.Signal(2)
	d.Signal(3)
	close(gate)

	require.Eventually(t, func() bool {
		return len(c.snapshot()) == 3
	}, time.Second, time.Millisecond)
	require.Equal(t, []int{1, 2, 3}, c.snapshot())
}

func TestDispatcherDiscard(t *testing.T) {
	gate := make(chan struct{})
	c := &collector{}
	d := New(func(v int) {
		if v == 1 {
			<-gate
		}
		c.record(v)
	})
	defer d.Close()

	d.Signal(1)
	require.Eventually(t, func() bool {
		d.mu.Lock()
		defer d.mu.Unlock()
		return len(d.queue) == 0
	}, time.Second, time.Millisecond)

	// 处理函数阻塞期间入队的事件应被 Discard 丢弃
	d.Signal(2)
	d.Signal(3)
	d.Discard()
	close(gate)

	require.Eventually(t, func() bool {
		return len(c.snapshot()) == 1
	}, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, []int{1}, c.snapshot())
}

func TestDispatcherClose(t *testing.T) {
	t.Run("关闭后入队为空操作", func(t *testing.T) {
		c := &collector{}
		d := New(c.record)
		d.Close()

		d.Signal(1)
		time.Sleep(20 * time.Millisecond)
		require.Empty(t, c.snapshot())
	})

	t.Run("重复关闭", func(t *testing.T) {
		d := New(func(int) {})
		d.Close()
		require.NotPanics(t, func() { d.Close() })
	})
}
