// Package discovery 定义服务发现相关接口
//
// 发现模块由三类协作者组成：
//   - Browser: 平台浏览器，异步报告服务的出现与消失
//   - Resolver: 解析器，查询单个服务实例的连接细节
//   - Announcer: 通告器，在局域网内发布本机服务
//
// 协调器位于 Browser 与 Listener 之间，吸收抖动、串行化解析，
// 并把状态变化合并后投递给业务方。
package discovery

import (
	"context"
	"time"

	"github.com/dep2p/go-dnssd/pkg/types"
)

// ============================================================================
//                              Browser - 平台浏览器
// ============================================================================

// Browser 平台发现子系统
//
// BeginDiscovery 与 EndDiscovery 均为异步命令：调用立即返回，
// 实际结果通过 BrowseListener 回调确认，且命令一旦下发不可取消。
// 调用方负责保证同一时刻至多一条命令在途。
type Browser interface {
	// BeginDiscovery 开始浏览指定服务类型
	//
	// 结果通过 listener 的 OnDiscoveryStarted 或
	// OnStartDiscoveryFailed 回调确认。
	BeginDiscovery(serviceType string, listener BrowseListener)

	// EndDiscovery 停止当前浏览
	//
	// 结果通过 OnDiscoveryStopped 或 OnStopDiscoveryFailed 确认。
	EndDiscovery()
}

// BrowseListener 平台浏览回调
//
// 回调可能在任意 goroutine 上触发，实现必须自行做并发防护。
type BrowseListener interface {
	// OnDiscoveryStarted 浏览已生效
	OnDiscoveryStarted(serviceType string)

	// OnStartDiscoveryFailed 浏览启动失败
	OnStartDiscoveryFailed(serviceType string, code types.ErrorCode)

	// OnDiscoveryStopped 浏览已停止
	OnDiscoveryStopped(serviceType string)

	// OnStopDiscoveryFailed 浏览停止失败
	OnStopDiscoveryFailed(serviceType string, code types.ErrorCode)

	// OnServiceFound 发现服务实例，仅携带实例名
	OnServiceFound(instance string)

	// OnServiceLost 服务实例消失
	OnServiceLost(instance string)
}

// ============================================================================
//                              Resolver - 解析器
// ============================================================================

// Resolver 服务解析器
//
// 解析是阻塞操作，实现必须同时尊重 ctx 与 timeout 约束。
// 解析失败不影响协调器已有的记录。
type Resolver interface {
	// Resolve 解析服务键对应的连接细节
	Resolve(ctx context.Context, serviceKey string, timeout time.Duration) (types.Service, error)
}

// ============================================================================
//                              Announcer - 服务通告
// ============================================================================

// Announcer 服务通告器
type Announcer interface {
	// Announce 在局域网内发布服务
	Announce(instance string, port int, txt map[string]string) error

	// Shutdown 撤销通告并释放资源
	Shutdown() error
}
