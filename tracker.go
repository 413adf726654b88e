package dnssd

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/dep2p/go-dnssd/config"
	"github.com/dep2p/go-dnssd/internal/core/coordinator"
	"github.com/dep2p/go-dnssd/internal/core/mdns"
)

// ════════════════════════════════════════════════════════════════════════════
//                              Tracker - 服务追踪器
// ════════════════════════════════════════════════════════════════════════════

// Tracker 单个服务类型的追踪器
//
// Tracker 是用户与 go-dnssd 交互的主入口。它是一个门面，
// 聚合了平台浏览器、解析器与发现协调器。
//
// 架构层次：
//   - API Layer: Tracker (本层，用户直接交互)
//   - 协调层: coordinator（去抖、串行解析、合并投递、生命周期）
//   - 平台层: mdns（浏览、解析、通告）
//
// 使用示例：
//
//	tracker, err := dnssd.New("_ipp._tcp", listener,
//	    dnssd.WithDebounce(2*time.Second),
//	    dnssd.WithResolveTimeout(5*time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tracker.Close()
//
//	if err := tracker.Start(); err != nil {
//	    log.Fatal(err)
//	}
type Tracker struct {
	serviceType string

	// coord 发现协调器，事件管线的所有者
	coord *coordinator.Coordinator

	// ownBrowser 内置浏览器
	//
	// 仅当调用方未注入自定义浏览器时非 nil，由 Tracker
	// 持有关闭责任；注入的浏览器生命周期归调用方。
	ownBrowser *mdns.Browser
}

// ════════════════════════════════════════════════════════════════════════════
//                              构造函数
// ════════════════════════════════════════════════════════════════════════════

// New 创建服务追踪器
//
// 创建后追踪器处于停止状态，需要调用 Start() 开始浏览。
// listener 的回调在单一 goroutine 上顺序执行。
//
// 示例：
//
//	tracker, err := dnssd.New("_ipp._tcp", dnssd.ListenerFuncs{
//	    ServiceResolved: func(svc dnssd.Service) { fmt.Println(svc) },
//	})
func New(serviceType string, listener Listener, opts ...Option) (*Tracker, error) {
	o := newOptions()
	if err := o.apply(opts); err != nil {
		return nil, err
	}

	browser := o.browser
	var ownBrowser *mdns.Browser
	if browser == nil {
		ownBrowser = mdns.NewBrowser(mdns.BrowserConfig{
			Domain:        o.domain,
			QueryInterval: o.queryInterval,
			LossThreshold: o.lossThreshold,
			DisableIPv6:   !o.enableIPv6,
			Clock:         o.clk,
		})
		browser = ownBrowser
	}
	resolver := o.resolver
	if resolver == nil {
		resolver = mdns.NewResolver()
	}

	coord, err := coordinator.New(
		coordinator.Config{
			ServiceType:    serviceType,
			Domain:         o.domain,
			DebounceWindow: o.debounceWindow,
			ResolveTimeout: o.resolveTimeout,
		},
		coordinator.Deps{
			Browser:  browser,
			Resolver: resolver,
			Listener: listener,
			Clock:    o.clk,
		},
	)
	if err != nil {
		if ownBrowser != nil {
			_ = ownBrowser.Close()
		}
		return nil, err
	}

	return &Tracker{
		serviceType: serviceType,
		coord:       coord,
		ownBrowser:  ownBrowser,
	}, nil
}

// NewFromConfig 从配置创建服务追踪器
//
// 走 config.Load 从 JSON 文件加载配置的场景使用。
// opts 在配置之后应用，可覆盖配置中的字段。
func NewFromConfig(cfg config.Config, listener Listener, opts ...Option) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	base := []Option{
		WithDebounce(cfg.DebounceWindow.Duration()),
		WithResolveTimeout(cfg.ResolveTimeout.Duration()),
		WithQueryInterval(cfg.QueryInterval.Duration()),
		WithLossThreshold(cfg.LossThreshold),
		WithIPv6(cfg.EnableIPv6),
	}
	if cfg.Domain != "" {
		base = append(base, WithDomain(cfg.Domain))
	}
	return New(cfg.ServiceType, listener, append(base, opts...)...)
}

// ════════════════════════════════════════════════════════════════════════════
//                              生命周期
// ════════════════════════════════════════════════════════════════════════════

// Start 开始浏览
//
// 异步操作：返回 nil 只表示启动意图已受理，浏览生效与否
// 通过 listener 的 OnDiscoveryStarted / OnStartDiscoveryFailed
// 回调确认。已在浏览时为空操作。
func (t *Tracker) Start() error {
	return t.coord.Start()
}

// Stop 停止浏览
//
// 异步操作，结果通过 OnDiscoveryStopped / OnStopDiscoveryFailed
// 确认。已停止时为空操作。未投递的事件随停止一并丢弃。
func (t *Tracker) Stop() error {
	return t.coord.Stop()
}

// Close 关闭追踪器并释放资源
//
// 幂等。不得在 listener 回调内部调用。
func (t *Tracker) Close() error {
	err := t.coord.Close()
	if t.ownBrowser != nil {
		err = multierr.Append(err, t.ownBrowser.Close())
	}
	return err
}

// ════════════════════════════════════════════════════════════════════════════
//                              状态读取
// ════════════════════════════════════════════════════════════════════════════

// ServiceType 返回追踪的服务类型
func (t *Tracker) ServiceType() string {
	return t.serviceType
}

// State 返回当前发现状态
func (t *Tracker) State() DiscoveryState {
	return t.coord.State()
}

// Services 返回当前已解析服务的快照，按完整实例名排序
func (t *Tracker) Services() []Service {
	return t.coord.Services()
}

// Stats 返回运行统计快照
func (t *Tracker) Stats() DiscoveryStats {
	return t.coord.Stats()
}
