package dnssd

import (
	"github.com/dep2p/go-dnssd/pkg/interfaces/discovery"
	"github.com/dep2p/go-dnssd/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              版本信息
// ════════════════════════════════════════════════════════════════════════════

// Version 当前版本
const Version = "v0.1.0"

// BuildInfo 构建信息（通过 ldflags 注入）
var (
	// GitCommit Git 提交哈希
	GitCommit string

	// BuildDate 构建日期
	BuildDate string
)

// VersionInfo 返回完整版本信息字符串
func VersionInfo() string {
	info := "go-dnssd " + Version
	if GitCommit != "" {
		info += " (" + GitCommit[:min(8, len(GitCommit))] + ")"
	}
	if BuildDate != "" {
		info += " built " + BuildDate
	}
	return info
}

// ════════════════════════════════════════════════════════════════════════════
//                              类型别名
// ════════════════════════════════════════════════════════════════════════════

// 公共类型在 pkg/types 与 pkg/interfaces 中定义，
// 这里导出别名，调用方只需导入根包。

type (
	// Service 局域网服务记录
	Service = types.Service

	// DiscoveryState 发现生命周期状态
	DiscoveryState = types.DiscoveryState

	// ErrorCode 平台错误码
	ErrorCode = types.ErrorCode

	// DiscoveryStats 发现统计快照
	DiscoveryStats = types.DiscoveryStats

	// Listener 业务监听器，回调顺序执行互不并发
	Listener = discovery.Listener

	// ListenerFuncs Listener 的函数适配器
	ListenerFuncs = discovery.ListenerFuncs

	// Browser 平台浏览子系统
	Browser = discovery.Browser

	// Resolver 服务解析器
	Resolver = discovery.Resolver

	// Announcer 服务通告器
	Announcer = discovery.Announcer
)

// 发现生命周期状态
const (
	// StateStopped 已停止
	StateStopped = types.StateStopped
	// StateStarting 启动命令在途
	StateStarting = types.StateStarting
	// StateStarted 浏览中
	StateStarted = types.StateStarted
	// StateStopping 停止命令在途
	StateStopping = types.StateStopping
)

// 平台错误码
const (
	// ErrCodeInternal 内部错误
	ErrCodeInternal = types.ErrCodeInternal
	// ErrCodeTimeout 操作超时
	ErrCodeTimeout = types.ErrCodeTimeout
	// ErrCodeBadName 服务名称非法
	ErrCodeBadName = types.ErrCodeBadName
	// ErrCodeNetwork 网络不可用
	ErrCodeNetwork = types.ErrCodeNetwork
	// ErrCodeBusy 已有同类操作进行中
	ErrCodeBusy = types.ErrCodeBusy
)
