// Package types 定义 go-dnssd 公共类型
//
// 本文件定义事件相关类型。
package types

import (
	"time"
)

// ============================================================================
//                              Event - 事件接口
// ============================================================================

// Event 基础事件接口
type Event interface {
	// Type 返回事件类型
	Type() string

	// Timestamp 返回事件时间戳
	Timestamp() time.Time
}

// BaseEvent 基础事件实现
type BaseEvent struct {
	EventType string
	Time      time.Time
}

// Type 返回事件类型
func (e BaseEvent) Type() string {
	return e.EventType
}

// Timestamp 返回事件时间戳
func (e BaseEvent) Timestamp() time.Time {
	return e.Time
}

// NewBaseEvent 创建基础事件
func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventType: eventType,
		Time:      time.Now(),
	}
}

// ============================================================================
//                              生命周期事件
// ============================================================================

// EvtDiscoveryStarted 浏览生效事件
//
// 平台确认浏览命令生效后发射，与调用方当前的期望态无关。
type EvtDiscoveryStarted struct {
	BaseEvent
	ServiceType string
}

// EvtDiscoveryStopped 浏览停止事件
type EvtDiscoveryStopped struct {
	BaseEvent
	ServiceType string
}

// EvtStartDiscoveryFailed 浏览启动失败事件
type EvtStartDiscoveryFailed struct {
	BaseEvent
	ServiceType string
	Code        ErrorCode
}

// EvtStopDiscoveryFailed 浏览停止失败事件
type EvtStopDiscoveryFailed struct {
	BaseEvent
	ServiceType string
	Code        ErrorCode
}

// ============================================================================
//                              服务事件
// ============================================================================

// EvtServiceFound 服务出现事件
//
// 记录仅填充 Name；完整信息随 EvtServiceResolved 到达。
type EvtServiceFound struct {
	BaseEvent
	Service Service
}

// EvtServiceLost 服务消失事件
//
// 仅对曾经解析成功的服务发射，携带其最后一次解析的记录。
type EvtServiceLost struct {
	BaseEvent
	Service Service
}

// EvtServiceResolved 服务解析完成事件
type EvtServiceResolved struct {
	BaseEvent
	Service Service
}

// EvtResolveFailed 服务解析失败事件
//
// 解析失败不会移除已存在的记录，也不会触发自动重试。
type EvtResolveFailed struct {
	BaseEvent
	Service Service
	Code    ErrorCode
}

// ============================================================================
//                              事件类型常量
// ============================================================================

// 事件类型常量
const (
	EventTypeDiscoveryStarted     = "discovery_started"
	EventTypeDiscoveryStopped     = "discovery_stopped"
	EventTypeStartDiscoveryFailed = "start_discovery_failed"
	EventTypeStopDiscoveryFailed  = "stop_discovery_failed"
	EventTypeServiceFound         = "service_found"
	EventTypeServiceLost          = "service_lost"
	EventTypeServiceResolved      = "service_resolved"
	EventTypeResolveFailed        = "resolve_failed"
)
