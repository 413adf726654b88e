package coordinator

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/dep2p/go-dnssd/pkg/types"
)

// ============================================================================
//                              解析工作协程
// ============================================================================

// startWorkerLocked 确保解析工作协程在运行，须持有 c.mu
func (c *Coordinator) startWorkerLocked() {
	if c.workerActive {
		return
	}
	c.workerActive = true
	go c.resolveLoop()
}

// resolveLoop 解析循环
//
// 出队与标记空闲在同一个临界区内完成：入队方持锁时要么看到
// 非空队列（本循环稍后取走），要么看到 workerActive 为假而
// 重新拉起循环，唤醒不会丢失。
func (c *Coordinator) resolveLoop() {
	for {
		c.mu.Lock()
		key, ok := c.queue.Dequeue()
		if !ok {
			c.workerActive = false
			c.mu.Unlock()
			return
		}
		epoch := c.epoch
		timeout := c.cfg.ResolveTimeout
		c.mu.Unlock()

		svc, err := c.resolveOne(key, timeout)

		c.mu.Lock()
		if c.closed || !c.started || c.epoch != epoch {
			// 会话已切换，结果作废
			c.mu.Unlock()
			log.Debug("丢弃过期的解析结果", "key", key)
			continue
		}
		if err != nil {
			c.stats.AddResolveFailed()
			c.enqueueLocked(types.EvtResolveFailed{
				BaseEvent: types.NewBaseEvent(types.EventTypeResolveFailed),
				Service:   types.Service{Name: types.ParseInstanceName(key)},
				Code:      codeForError(err),
			}, true)
			c.mu.Unlock()
			log.Warn("解析失败", "key", key, "err", err)
			continue
		}
		if !c.deb.Contains(key) {
			// 解析期间服务已确认丢失
			c.mu.Unlock()
			log.Debug("丢弃已丢失服务的解析结果", "key", key)
			continue
		}
		c.services[key] = svc
		c.stats.AddResolved()
		c.enqueueLocked(types.EvtServiceResolved{
			BaseEvent: types.NewBaseEvent(types.EventTypeServiceResolved),
			Service:   svc,
		}, true)
		c.mu.Unlock()
		log.Debug("解析完成", "key", key, "host", svc.Host, "port", svc.Port)
	}
}

// resolveOne 解析单个服务键
func (c *Coordinator) resolveOne(key string, timeout time.Duration) (types.Service, error) {
	ctx, cancel := c.clk.WithTimeout(c.ctx, timeout)
	defer cancel()
	return c.resolver.Resolve(ctx, key, timeout)
}

// codeForError 把解析错误映射为错误码
func codeForError(err error) types.ErrorCode {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return types.ErrCodeTimeout
	case errors.Is(err, types.ErrInvalidServiceKey):
		return types.ErrCodeBadName
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return types.ErrCodeTimeout
		}
		return types.ErrCodeNetwork
	}
	return types.ErrCodeInternal
}
