package dnssd

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-dnssd/config"
	"github.com/dep2p/go-dnssd/pkg/interfaces/discovery"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// 浏览域与时序参数
	domain         string
	debounceWindow time.Duration
	resolveTimeout time.Duration
	queryInterval  time.Duration
	lossThreshold  int
	enableIPv6     bool

	// 注入的平台实现，nil 时使用内置 mDNS 适配
	browser  discovery.Browser
	resolver discovery.Resolver

	// 时钟注入，仅测试场景使用
	clk clock.Clock
}

// newOptions 创建默认选项
//
// 默认值与 config.DefaultConfig 保持单一来源。
func newOptions() *options {
	def := config.DefaultConfig()
	return &options{
		domain:         def.Domain,
		debounceWindow: def.DebounceWindow.Duration(),
		resolveTimeout: def.ResolveTimeout.Duration(),
		queryInterval:  def.QueryInterval.Duration(),
		lossThreshold:  def.LossThreshold,
		enableIPv6:     def.EnableIPv6,
	}
}

// apply 依次应用选项
func (o *options) apply(opts []Option) error {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return fmt.Errorf("apply option: %w", err)
		}
	}
	return nil
}

// ============================================================================
//                              时序选项
// ============================================================================

// WithDebounce 设置服务消失的去抖窗口
//
// 窗口内先消失又重现的服务不会产生 lost 事件。
// 0 表示消失立即确认。
//
//	dnssd.New("_ipp._tcp", listener, dnssd.WithDebounce(2*time.Second))
func WithDebounce(window time.Duration) Option {
	return func(o *options) error {
		if window < 0 {
			return fmt.Errorf("去抖窗口不能为负 (%v): %w", window, ErrInvalidDebounce)
		}
		o.debounceWindow = window
		return nil
	}
}

// WithResolveTimeout 设置单次解析超时
func WithResolveTimeout(timeout time.Duration) Option {
	return func(o *options) error {
		if timeout <= 0 {
			return fmt.Errorf("解析超时必须为正 (%v): %w", timeout, ErrInvalidResolveTimeout)
		}
		o.resolveTimeout = timeout
		return nil
	}
}

// WithQueryInterval 设置内置浏览器的查询周期
//
// 注入自定义 Browser 时本选项无效。
func WithQueryInterval(interval time.Duration) Option {
	return func(o *options) error {
		if interval <= 0 {
			return fmt.Errorf("查询周期必须为正: %v", interval)
		}
		o.queryInterval = interval
		return nil
	}
}

// WithLossThreshold 设置内置浏览器的判失阈值
//
// 服务连续缺席多少个查询周期后判定消失。
func WithLossThreshold(rounds int) Option {
	return func(o *options) error {
		if rounds <= 0 {
			return fmt.Errorf("判失阈值必须为正: %d", rounds)
		}
		o.lossThreshold = rounds
		return nil
	}
}

// ============================================================================
//                              浏览域选项
// ============================================================================

// WithDomain 设置浏览域，默认 "local"
func WithDomain(domain string) Option {
	return func(o *options) error {
		if domain == "" {
			return fmt.Errorf("浏览域不能为空")
		}
		o.domain = domain
		return nil
	}
}

// WithIPv6 设置是否同时查询 IPv6
func WithIPv6(enable bool) Option {
	return func(o *options) error {
		o.enableIPv6 = enable
		return nil
	}
}

// ============================================================================
//                              平台注入选项
// ============================================================================

// WithBrowser 注入自定义平台浏览器
//
// 用于接入其它发现后端，或在测试中替换网络层。
// 注入的浏览器生命周期由调用方管理，Tracker 关闭时不会关闭它。
func WithBrowser(browser discovery.Browser) Option {
	return func(o *options) error {
		if browser == nil {
			return fmt.Errorf("浏览器不能为空")
		}
		o.browser = browser
		return nil
	}
}

// WithResolver 注入自定义解析器
func WithResolver(resolver discovery.Resolver) Option {
	return func(o *options) error {
		if resolver == nil {
			return fmt.Errorf("解析器不能为空")
		}
		o.resolver = resolver
		return nil
	}
}

// WithClock 注入时钟
//
// 测试中配合 clock.Mock 驱动去抖窗口与解析超时。
func WithClock(clk clock.Clock) Option {
	return func(o *options) error {
		if clk == nil {
			return fmt.Errorf("时钟不能为空")
		}
		o.clk = clk
		return nil
	}
}
