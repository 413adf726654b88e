// Package debounce 实现带延迟移除语义的去抖集合
//
// 集合吸收服务可见性的短暂抖动：键在窗口内先消失又重现时，
// 不产生任何移除信号，对外表现为从未离开。
//
// 同步信号（加入、立即移除）通过 Put 的返回值交给调用方，
// 由调用方在自己的锁内处理；窗口到期的异步移除通过 onExpire
// 回调通知，回调在计时器 goroutine 上触发，且不持有集合内部锁。
// 这样调用方可以在持有自身互斥锁时安全地调用 Put 与 Clear。
//
// 代价是条目删除与回调送达之间存在窗口：其间的 Put 会产生
// SignalAdd，随后到达的回调已经过期。回调方须用 Contains
// 重查成员资格，键仍在集合中即放弃本次移除。
package debounce

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Signal Put 产生的同步信号
type Signal int

const (
	// SignalNone 无状态变化
	SignalNone Signal = iota
	// SignalAdd 键首次进入集合
	SignalAdd
	// SignalRemove 键被立即移除（仅窗口为 0 时产生）
	SignalRemove
	// SignalRevive 键在窗口内重现，挂起的移除被取消
	SignalRevive
)

// String 返回信号的字符串表示
func (s Signal) String() string {
	switch s {
	case SignalNone:
		return "none"
	case SignalAdd:
		return "add"
	case SignalRemove:
		return "remove"
	case SignalRevive:
		return "revive"
	default:
		return "unknown"
	}
}

// entryState 条目状态
type entryState int

const (
	// statePresent 键可见
	statePresent entryState = iota
	// statePendingRemoval 键已消失，等待窗口到期确认
	statePendingRemoval
)

// entry 集合条目
//
// 每个键至多持有一个在途计时器；gen 用于识别已被
// 取消但尚未观察到取消的迟到计时器回调。
type entry struct {
	state entryState
	timer *clock.Timer
	gen   uint64
}

// Map 去抖集合
type Map[K comparable] struct {
	mu       sync.Mutex
	window   time.Duration
	clk      clock.Clock
	onExpire func(K)
	entries  map[K]*entry
	nextGen  uint64
}

// NewMap 创建去抖集合
//
// window 为移除确认窗口；clk 为 nil 时使用系统时钟；
// onExpire 在窗口到期确认移除时回调，不得为 nil。
func NewMap[K comparable](window time.Duration, clk clock.Clock, onExpire func(K)) *Map[K] {
	if clk == nil {
		clk = clock.New()
	}
	return &Map[K]{
		window:   window,
		clk:      clk,
		onExpire: onExpire,
		entries:  make(map[K]*entry),
	}
}

// Put 更新键的可见性，返回同步信号
//
// present 为 true 时：新键返回 SignalAdd；取消挂起移除的键
// 返回 SignalRevive；已存在的键返回 SignalNone。
// present 为 false 时：未知键返回 SignalNone；窗口为 0 时立即
// 移除并返回 SignalRemove；否则启动计时器并返回 SignalNone，
// 已有计时器在途的键保持原计时器不变。
func (m *Map[K]) Put(key K, present bool) Signal {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]

	if present {
		if !ok {
			m.entries[key] = &entry{state: statePresent}
			return SignalAdd
		}
		if e.state == statePendingRemoval {
			if e.timer != nil {
				e.timer.Stop()
				e.timer = nil
			}
			e.state = statePresent
			return SignalRevive
		}
		return SignalNone
	}

	if !ok || e.state == statePendingRemoval {
		return SignalNone
	}

	if m.window <= 0 {
		delete(m.entries, key)
		return SignalRemove
	}

	m.nextGen++
	gen := m.nextGen
	e.state = statePendingRemoval
	e.gen = gen
	e.timer = m.clk.AfterFunc(m.window, func() {
		m.expire(key, gen)
	})
	return SignalNone
}

// expire 计时器到期：确认移除并回调
func (m *Map[K]) expire(key K, gen uint64) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok || e.state != statePendingRemoval || e.gen != gen {
		// 计时器在触发与取锁之间被取消
		m.mu.Unlock()
		return
	}
	delete(m.entries, key)
	m.mu.Unlock()

	m.onExpire(key)
}

// Clear 清空集合并取消全部计时器，不产生任何信号
func (m *Map[K]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.timer != nil {
			e.timer.Stop()
		}
	}
	m.entries = make(map[K]*entry)
}

// Contains 报告键是否仍属于集合（含等待移除确认的键）
func (m *Map[K]) Contains(key K) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

// Len 返回集合大小（含等待移除确认的键）
func (m *Map[K]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
