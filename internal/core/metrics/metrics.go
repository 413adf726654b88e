// Package metrics 实现发现与解析过程的计数统计
//
// Counter 以无锁原子计数记录事件量，供运行期观测抖动吸收
// 效果与解析队列水位。所有方法都可并发调用。
package metrics

import (
	"sync/atomic"

	"github.com/dep2p/go-dnssd/pkg/types"
)

// Counter 发现统计计数器
type Counter struct {
	found         atomic.Int64
	lost          atomic.Int64
	resolved      atomic.Int64
	resolveFailed atomic.Int64
	flapsAbsorbed atomic.Int64
	queuePeak     atomic.Int64
}

// NewCounter 创建计数器
func NewCounter() *Counter {
	return &Counter{}
}

// AddFound 记录一次服务发现
func (c *Counter) AddFound() {
	c.found.Add(1)
}

// AddLost 记录一次确认丢失
func (c *Counter) AddLost() {
	c.lost.Add(1)
}

// AddResolved 记录一次解析成功
func (c *Counter) AddResolved() {
	c.resolved.Add(1)
}

// AddResolveFailed 记录一次解析失败
func (c *Counter) AddResolveFailed() {
	c.resolveFailed.Add(1)
}

// AddFlapAbsorbed 记录一次被去抖窗口吸收的抖动
func (c *Counter) AddFlapAbsorbed() {
	c.flapsAbsorbed.Add(1)
}

// ObserveQueueLen 观测解析队列长度并更新峰值
func (c *Counter) ObserveQueueLen(n int) {
	v := int64(n)
	for {
		peak := c.queuePeak.Load()
		if v <= peak || c.queuePeak.CompareAndSwap(peak, v) {
			return
		}
	}
}

// Snapshot 返回当前计数快照
func (c *Counter) Snapshot() types.DiscoveryStats {
	return types.DiscoveryStats{
		Found:         c.found.Load(),
		Lost:          c.lost.Load(),
		Resolved:      c.resolved.Load(),
		ResolveFailed: c.resolveFailed.Load(),
		FlapsAbsorbed: c.flapsAbsorbed.Load(),
		QueuePeak:     c.queuePeak.Load(),
	}
}

// Reset 清零全部计数
func (c *Counter) Reset() {
	c.found.Store(0)
	c.lost.Store(0)
	c.resolved.Store(0)
	c.resolveFailed.Store(0)
	c.flapsAbsorbed.Store(0)
	c.queuePeak.Store(0)
}
