package coordinator

import (
	"github.com/dep2p/go-dnssd/internal/core/debounce"
	"github.com/dep2p/go-dnssd/pkg/types"
)

// ============================================================================
//                              平台生命周期回调
// ============================================================================

// OnDiscoveryStarted 平台确认浏览已生效
//
// 期望态在确认前被翻转时立即下发反向命令，transitioning
// 保持为真直到反向命令也被确认。
func (c *Coordinator) OnDiscoveryStarted(serviceType string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.enqueueLocked(types.EvtDiscoveryStarted{
		BaseEvent:   types.NewBaseEvent(types.EventTypeDiscoveryStarted),
		ServiceType: serviceType,
	}, false)
	if !c.started {
		c.mu.Unlock()
		log.Info("浏览生效但期望态已停止，下发停止命令", "serviceType", serviceType)
		c.browser.EndDiscovery()
		return
	}
	c.transitioning = false
	c.mu.Unlock()

	log.Info("浏览已生效", "serviceType", serviceType)
}

// OnDiscoveryStopped 平台确认浏览已停止
func (c *Coordinator) OnDiscoveryStopped(serviceType string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.enqueueLocked(types.EvtDiscoveryStopped{
		BaseEvent:   types.NewBaseEvent(types.EventTypeDiscoveryStopped),
		ServiceType: serviceType,
	}, false)
	if c.started {
		c.mu.Unlock()
		log.Info("浏览停止但期望态已开启，下发开始命令", "serviceType", serviceType)
		c.browser.BeginDiscovery(c.cfg.ServiceType, c)
		return
	}
	c.transitioning = false
	c.mu.Unlock()

	log.Info("浏览已停止", "serviceType", serviceType)
}

// OnStartDiscoveryFailed 浏览启动失败
//
// 平台实际未在浏览，期望态回退为停止，调用方可重试 Start。
func (c *Coordinator) OnStartDiscoveryFailed(serviceType string, code types.ErrorCode) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.started = false
	c.transitioning = false
	c.enqueueLocked(types.EvtStartDiscoveryFailed{
		BaseEvent:   types.NewBaseEvent(types.EventTypeStartDiscoveryFailed),
		ServiceType: serviceType,
		Code:        code,
	}, false)
	c.mu.Unlock()

	log.Warn("浏览启动失败", "serviceType", serviceType, "code", code)
}

// OnStopDiscoveryFailed 浏览停止失败
//
// 平台实际仍在浏览，期望态回退为开启，调用方可重试 Stop。
// Stop 已清空的运行状态保持清空。
func (c *Coordinator) OnStopDiscoveryFailed(serviceType string, code types.ErrorCode) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.transitioning = false
	c.enqueueLocked(types.EvtStopDiscoveryFailed{
		BaseEvent:   types.NewBaseEvent(types.EventTypeStopDiscoveryFailed),
		ServiceType: serviceType,
		Code:        code,
	}, false)
	c.mu.Unlock()

	log.Warn("浏览停止失败", "serviceType", serviceType, "code", code)
}

// ============================================================================
//                              平台服务回调
// ============================================================================

// OnServiceFound 平台报告服务出现
//
// 首次出现时发射 found 事件并排队解析；去抖窗口内的重现
// 只撤销挂起的移除，不产生任何事件。
func (c *Coordinator) OnServiceFound(instance string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.started {
		return
	}

	key := c.keyFor(instance)
	switch c.deb.Put(key, true) {
	case debounce.SignalAdd:
		c.stats.AddFound()
		c.enqueueLocked(types.EvtServiceFound{
			BaseEvent: types.NewBaseEvent(types.EventTypeServiceFound),
			Service:   types.Service{Name: instance},
		}, true)
		if c.queue.Enqueue(key) {
			c.stats.ObserveQueueLen(c.queue.Len())
			c.startWorkerLocked()
		}
		log.Debug("发现服务", "key", key)
	case debounce.SignalRevive:
		c.stats.AddFlapAbsorbed()
		log.Debug("抖动被吸收", "key", key)
	}
}

// OnServiceLost 平台报告服务消失
//
// 去抖窗口大于 0 时只挂起移除；窗口为 0 时立即确认丢失。
func (c *Coordinator) OnServiceLost(instance string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.started {
		return
	}

	key := c.keyFor(instance)
	if c.deb.Put(key, false) == debounce.SignalRemove {
		c.removeServiceLocked(key)
	}
}

// ============================================================================
//                              确认丢失
// ============================================================================

// onDebounceExpired 去抖窗口到期，服务确认丢失
//
// 在去抖集合的计时器 goroutine 上触发，此时不持有集合内部锁；
// 条目删除与回调送达之间可能插入重现，须重查成员资格。
func (c *Coordinator) onDebounceExpired(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.started {
		return
	}
	if c.deb.Contains(key) {
		// 回调送达前服务已重现，本次移除作废
		return
	}
	c.removeServiceLocked(key)
}

// removeServiceLocked 处理确认丢失的服务，须持有 c.mu
//
// 撤回尚未开始的解析；只为解析成功过的服务发射 lost 事件，
// 携带其最后一次解析的记录。
func (c *Coordinator) removeServiceLocked(key string) {
	c.queue.Remove(key)

	svc, ok := c.services[key]
	if !ok {
		log.Debug("未解析的服务确认丢失", "key", key)
		return
	}
	delete(c.services, key)
	c.stats.AddLost()
	c.enqueueLocked(types.EvtServiceLost{
		BaseEvent: types.NewBaseEvent(types.EventTypeServiceLost),
		Service:   svc,
	}, true)
	log.Debug("服务确认丢失", "key", key)
}
