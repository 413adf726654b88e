// Package dispatch 实现合并唤醒的串行事件投递
//
// Dispatcher 把事件排入有序队列，由单一投递协程逐个交给
// 处理函数。唤醒采用合并语义：一次调度周期内的多次 Signal
// 只产生一次唤醒，投递协程在该周期内取走整批事件。处理函数
// 永远不会被并发调用。
package dispatch

import (
	"sync"
)

// ============================================================================
// 调度器定义
// ============================================================================

// Dispatcher 串行事件调度器
type Dispatcher[T any] struct {
	handler func(T)

	mu      sync.Mutex
	queue   []T
	pending bool // 已有唤醒在途
	closed  bool

	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
}

// New 创建调度器并启动投递协程
func New[T any](handler func(T)) *Dispatcher[T] {
	d := &Dispatcher[T]{
		handler: handler,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	d.wg.Add(1)
	go d.loop()
	return d
}

// ============================================================================
// 事件入队与丢弃
// ============================================================================

// Signal 追加事件并在必要时唤醒投递协程
//
// 若上一次唤醒尚未被消费则只入队不重复唤醒。关闭后调用为
// 空操作。
func (d *Dispatcher[T]) Signal(item T) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.queue = append(d.queue, item)
	wake := !d.pending
	d.pending = true
	d.mu.Unlock()

	if wake {
		select {
		case d.wake <- struct{}{}:
		default:
		}
	}
}

// Discard 丢弃尚未取走的事件
//
// 已被投递协程取走的批次不受影响，由调用方在处理函数内
// 自行过滤。
func (d *Dispatcher[T]) Discard() {
	d.mu.Lock()
	d.queue = nil
	d.mu.Unlock()
}

// Close 停止投递协程并等待其退出
//
// 队列中未投递的事件被丢弃。重复调用为空操作。不得在处理
// 函数内部调用，等待自身退出会死锁。
func (d *Dispatcher[T]) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	close(d.done)
	d.wg.Wait()
}

// ============================================================================
// 投递循环
// ============================================================================

// loop 投递循环
//
// 每次唤醒取走整批事件后按序投递。pending 在取批之前清零，
// 投递期间新到的事件会触发下一次唤醒。
func (d *Dispatcher[T]) loop() {
	defer d.wg.Done()
	for {
		select {
		case <-d.done:
			return
		case <-d.wake:
		}

		d.mu.Lock()
		d.pending = false
		batch := d.queue
		d.queue = nil
		d.mu.Unlock()

		for _, item := range batch {
			select {
			case <-d.done:
				return
			default:
			}
			d.handler(item)
		}
	}
}
