package discovery

import (
	"github.com/dep2p/go-dnssd/pkg/types"
)

// ============================================================================
//                              Listener - 业务监听器
// ============================================================================

// Listener 服务发现业务监听器
//
// 所有回调都在协调器的投递 goroutine 上顺序执行，互不并发。
// 回调内不要长时间阻塞，否则会延迟后续事件的投递。
// 失败回调携带的错误码都不是致命的，由调用方决定是否重试。
type Listener interface {
	// OnDiscoveryStarted 浏览已生效
	OnDiscoveryStarted(serviceType string)

	// OnStartDiscoveryFailed 浏览启动失败，可重试 Start
	OnStartDiscoveryFailed(serviceType string, code types.ErrorCode)

	// OnDiscoveryStopped 浏览已停止
	OnDiscoveryStopped(serviceType string)

	// OnStopDiscoveryFailed 浏览停止失败，可重试 Stop
	OnStopDiscoveryFailed(serviceType string, code types.ErrorCode)

	// OnServiceFound 服务出现，记录仅填充 Name
	OnServiceFound(svc types.Service)

	// OnServiceLost 服务消失，携带最后一次解析的记录
	OnServiceLost(svc types.Service)

	// OnServiceResolved 服务解析完成，记录完整
	OnServiceResolved(svc types.Service)

	// OnResolveFailed 服务解析失败，记录仅填充 Name
	OnResolveFailed(svc types.Service, code types.ErrorCode)
}

// ============================================================================
//                              ListenerFuncs - 函数适配器
// ============================================================================

// ListenerFuncs Listener 的函数适配器
//
// 未设置的回调按空操作处理，适合只关心部分事件的调用方：
//
//	listener := discovery.ListenerFuncs{
//	    ServiceResolved: func(svc types.Service) {
//	        fmt.Println("resolved:", svc)
//	    },
//	}
type ListenerFuncs struct {
	DiscoveryStarted     func(serviceType string)
	StartDiscoveryFailed func(serviceType string, code types.ErrorCode)
	DiscoveryStopped     func(serviceType string)
	StopDiscoveryFailed  func(serviceType string, code types.ErrorCode)
	ServiceFound         func(svc types.Service)
	ServiceLost          func(svc types.Service)
	ServiceResolved      func(svc types.Service)
	ResolveFailed        func(svc types.Service, code types.ErrorCode)
}

var _ Listener = ListenerFuncs{}

// OnDiscoveryStarted 实现 Listener
func (l ListenerFuncs) OnDiscoveryStarted(serviceType string) {
	if l.DiscoveryStarted != nil {
		l.DiscoveryStarted(serviceType)
	}
}

// OnStartDiscoveryFailed 实现 Listener
func (l ListenerFuncs) OnStartDiscoveryFailed(serviceType string, code types.ErrorCode) {
	if l.StartDiscoveryFailed != nil {
		l.StartDiscoveryFailed(serviceType, code)
	}
}

// OnDiscoveryStopped 实现 Listener
func (l ListenerFuncs) OnDiscoveryStopped(serviceType string) {
	if l.DiscoveryStopped != nil {
		l.DiscoveryStopped(serviceType)
	}
}

// OnStopDiscoveryFailed 实现 Listener
func (l ListenerFuncs) OnStopDiscoveryFailed(serviceType string, code types.ErrorCode) {
	if l.StopDiscoveryFailed != nil {
		l.StopDiscoveryFailed(serviceType, code)
	}
}

// OnServiceFound 实现 Listener
func (l ListenerFuncs) OnServiceFound(svc types.Service) {
	if l.ServiceFound != nil {
		l.ServiceFound(svc)
	}
}

// OnServiceLost 实现 Listener
func (l ListenerFuncs) OnServiceLost(svc types.Service) {
	if l.ServiceLost != nil {
		l.ServiceLost(svc)
	}
}

// OnServiceResolved 实现 Listener
func (l ListenerFuncs) OnServiceResolved(svc types.Service) {
	if l.ServiceResolved != nil {
		l.ServiceResolved(svc)
	}
}

// OnResolveFailed 实现 Listener
func (l ListenerFuncs) OnResolveFailed(svc types.Service, code types.ErrorCode) {
	if l.ResolveFailed != nil {
		l.ResolveFailed(svc, code)
	}
}
