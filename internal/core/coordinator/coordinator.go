package coordinator

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-dnssd/internal/core/debounce"
	"github.com/dep2p/go-dnssd/internal/core/dispatch"
	"github.com/dep2p/go-dnssd/internal/core/metrics"
	"github.com/dep2p/go-dnssd/internal/core/resolvequeue"
	"github.com/dep2p/go-dnssd/internal/util/logger"
	"github.com/dep2p/go-dnssd/pkg/interfaces/discovery"
	"github.com/dep2p/go-dnssd/pkg/types"
)

var log = logger.Logger("coordinator")

// ============================================================================
//                              配置与依赖
// ============================================================================

// Config 协调器配置
type Config struct {
	// ServiceType 浏览的服务类型，如 "_ipp._tcp"
	ServiceType string

	// Domain 浏览域，空值等同于 "local"
	Domain string

	// DebounceWindow 去抖窗口
	//
	// 服务消失后在窗口内重现不产生丢失通知。
	// 0 表示不去抖，消失立即生效。
	DebounceWindow time.Duration

	// ResolveTimeout 单次解析超时
	ResolveTimeout time.Duration
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.ServiceType == "" {
		return ErrMissingServiceType
	}
	if c.DebounceWindow < 0 {
		return ErrInvalidDebounce
	}
	if c.ResolveTimeout <= 0 {
		return ErrInvalidResolveTimeout
	}
	return nil
}

// Deps 协调器外部依赖
type Deps struct {
	// Browser 平台浏览子系统
	Browser discovery.Browser

	// Resolver 服务解析器
	Resolver discovery.Resolver

	// Listener 业务监听器
	Listener discovery.Listener

	// Clock 时钟，nil 时使用真实时钟
	Clock clock.Clock
}

// ============================================================================
//                              协调器定义
// ============================================================================

// envelope 待投递事件
//
// gated 事件只在会话纪元与期望态一致时投递，
// 生命周期事件不受门控。
type envelope struct {
	evt   types.Event
	epoch uint64
	gated bool
}

// Coordinator 发现协调器
//
// 所有可变状态由 mu 保护。锁序为 Coordinator.mu 在前、
// 叶子组件（去抖集合、调度器）内部锁在后，叶子组件持锁期间
// 从不回调协调器。
type Coordinator struct {
	cfg Config

	browser  discovery.Browser
	resolver discovery.Resolver
	listener discovery.Listener
	clk      clock.Clock

	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	closed        bool
	started       bool   // 期望态：调用方希望浏览处于开启
	transitioning bool   // 有平台命令在途，结果未确认
	epoch         uint64 // 会话纪元，每次 Stop 递增
	services      map[string]types.Service
	queue         *resolvequeue.Queue[string]
	workerActive  bool

	deb   *debounce.Map[string]
	disp  *dispatch.Dispatcher[envelope]
	stats *metrics.Counter
}

var _ discovery.BrowseListener = (*Coordinator)(nil)

// New 创建协调器
func New(cfg Config, deps Deps) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Browser == nil {
		return nil, ErrNilBrowser
	}
	if deps.Resolver == nil {
		return nil, ErrNilResolver
	}
	if deps.Listener == nil {
		return nil, ErrNilListener
	}

	clk := deps.Clock
	if clk == nil {
		clk = clock.New()
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		cfg:      cfg,
		browser:  deps.Browser,
		resolver: deps.Resolver,
		listener: deps.Listener,
		clk:      clk,
		ctx:      ctx,
		cancel:   cancel,
		services: make(map[string]types.Service),
		queue:    resolvequeue.New[string](),
		stats:    metrics.NewCounter(),
	}
	c.deb = debounce.NewMap[string](cfg.DebounceWindow, clk, c.onDebounceExpired)
	c.disp = dispatch.New(c.deliver)
	return c, nil
}

// ============================================================================
//                              生命周期
// ============================================================================

// Start 请求开始浏览
//
// 只翻转期望态；已有命令在途时不下发新命令，期望态在命令
// 确认时收敛。重复调用为空操作。
func (c *Coordinator) Start() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = true
	issue := !c.transitioning
	if issue {
		c.transitioning = true
	}
	c.mu.Unlock()

	log.Info("请求开始浏览", "serviceType", c.cfg.ServiceType, "issued", issue)
	if issue {
		c.browser.BeginDiscovery(c.cfg.ServiceType, c)
	}
	return nil
}

// Stop 请求停止浏览
//
// 递增会话纪元并清空服务表、解析队列、去抖集合与未投递的
// 受门控事件。已有命令在途时不下发新命令。重复调用为空操作。
func (c *Coordinator) Stop() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if !c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = false
	c.epoch++
	c.services = make(map[string]types.Service)
	c.queue.Clear()
	c.deb.Clear()
	c.disp.Discard()
	issue := !c.transitioning
	if issue {
		c.transitioning = true
	}
	c.mu.Unlock()

	log.Info("请求停止浏览", "serviceType", c.cfg.ServiceType, "issued", issue)
	if issue {
		c.browser.EndDiscovery()
	}
	return nil
}

// Close 关闭协调器并释放资源
//
// 先尽力下发停止命令，之后不再接受任何平台回调与业务调用。
// 不得在监听器回调内部调用。重复调用为空操作。
func (c *Coordinator) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	c.Stop()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.deb.Clear()
	c.mu.Unlock()

	c.cancel()
	c.disp.Close()
	log.Info("协调器已关闭", "serviceType", c.cfg.ServiceType)
	return nil
}

// ============================================================================
//                              状态查询
// ============================================================================

// State 返回当前发现状态
func (c *Coordinator) State() types.DiscoveryState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return types.StateStopped
	}
	switch {
	case c.transitioning && c.started:
		return types.StateStarting
	case c.transitioning:
		return types.StateStopping
	case c.started:
		return types.StateStarted
	default:
		return types.StateStopped
	}
}

// Services 返回已解析服务的快照，按全名排序
func (c *Coordinator) Services() []types.Service {
	c.mu.Lock()
	out := make([]types.Service, 0, len(c.services))
	for _, svc := range c.services {
		out = append(out, svc)
	}
	c.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].FullName < out[j].FullName
	})
	return out
}

// Stats 返回运行统计快照
func (c *Coordinator) Stats() types.DiscoveryStats {
	return c.stats.Snapshot()
}

// ============================================================================
//                              事件投递
// ============================================================================

// enqueueLocked 入队一个待投递事件，须持有 c.mu
func (c *Coordinator) enqueueLocked(evt types.Event, gated bool) {
	c.disp.Signal(envelope{evt: evt, epoch: c.epoch, gated: gated})
}

// deliver 投递单个事件到业务监听器
//
// 在调度器的投递 goroutine 上执行。受门控的事件先检查会话
// 纪元与期望态，过期事件静默丢弃。
func (c *Coordinator) deliver(env envelope) {
	if env.gated {
		c.mu.Lock()
		live := !c.closed && c.started && env.epoch == c.epoch
		c.mu.Unlock()
		if !live {
			return
		}
	}

	switch evt := env.evt.(type) {
	case types.EvtDiscoveryStarted:
		c.listener.OnDiscoveryStarted(evt.ServiceType)
	case types.EvtStartDiscoveryFailed:
		c.listener.OnStartDiscoveryFailed(evt.ServiceType, evt.Code)
	case types.EvtDiscoveryStopped:
		c.listener.OnDiscoveryStopped(evt.ServiceType)
	case types.EvtStopDiscoveryFailed:
		c.listener.OnStopDiscoveryFailed(evt.ServiceType, evt.Code)
	case types.EvtServiceFound:
		c.listener.OnServiceFound(evt.Service)
	case types.EvtServiceLost:
		c.listener.OnServiceLost(evt.Service)
	case types.EvtServiceResolved:
		c.listener.OnServiceResolved(evt.Service)
	case types.EvtResolveFailed:
		c.listener.OnResolveFailed(evt.Service, evt.Code)
	default:
		log.Warn("未知事件类型", "type", env.evt.Type())
	}
}

// keyFor 把实例名规范化为服务键
func (c *Coordinator) keyFor(instance string) string {
	return types.ServiceKey(instance, c.cfg.ServiceType, c.cfg.Domain)
}
