// Package types 定义 go-dnssd 公共类型
//
// 本文件定义枚举类型。
package types

// ============================================================================
//                              DiscoveryState - 发现状态
// ============================================================================

// DiscoveryState 发现生命周期状态
//
// 状态由两个标志推导：started（期望态）与 transitioning
// （平台命令在途）。Starting/Stopping 表示有命令等待平台确认。
type DiscoveryState int

const (
	// StateStopped 已停止
	StateStopped DiscoveryState = iota
	// StateStarting 启动命令在途
	StateStarting
	// StateStarted 浏览中
	StateStarted
	// StateStopping 停止命令在途
	StateStopping
)

// String 返回状态的字符串表示
func (s DiscoveryState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateStarted:
		return "started"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              ErrorCode - 错误码
// ============================================================================

// ErrorCode 平台错误码
//
// 随失败事件一同交付，所有错误都不是致命的：
// 协调器继续运行，由调用方决定是否重试。
type ErrorCode int

const (
	// ErrCodeInternal 内部错误
	ErrCodeInternal ErrorCode = iota
	// ErrCodeTimeout 操作超时
	ErrCodeTimeout
	// ErrCodeBadName 服务名称非法
	ErrCodeBadName
	// ErrCodeNetwork 网络不可用
	ErrCodeNetwork
	// ErrCodeBusy 已有同类操作进行中
	ErrCodeBusy
)

// String 返回错误码的字符串表示
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeInternal:
		return "internal"
	case ErrCodeTimeout:
		return "timeout"
	case ErrCodeBadName:
		return "bad_name"
	case ErrCodeNetwork:
		return "network"
	case ErrCodeBusy:
		return "busy"
	default:
		return "unknown"
	}
}
