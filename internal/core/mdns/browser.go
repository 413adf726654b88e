// Package mdns 实现基于组播 DNS 的平台适配层
//
// 本包把局域网 mDNS/DNS-SD 适配为发现接口的三个角色：
//   - Browser: 周期查询服务类型，从应答集合成服务的出现与消失
//   - Resolver: 一次性查询单个实例的主机、端口、地址与 TXT
//   - Announcer: 在局域网内发布本机服务
//
// mDNS 本身没有"浏览会话"概念，Browser 用查询轮次模拟：
// 新实例在首次应答时报告出现，连续多轮未应答则报告消失。
package mdns

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/hashicorp/mdns"

	"github.com/dep2p/go-dnssd/internal/util/logger"
	"github.com/dep2p/go-dnssd/pkg/interfaces/discovery"
	"github.com/dep2p/go-dnssd/pkg/types"
)

// 包级别日志实例
var log = logger.Logger("mdns")

// ============================================================================
//                              配置
// ============================================================================

// BrowserConfig 浏览器配置
type BrowserConfig struct {
	// Domain 浏览域，空值等同于 "local"
	Domain string

	// QueryInterval 查询轮次间隔
	QueryInterval time.Duration

	// QueryTimeout 单轮查询收集应答的时长
	QueryTimeout time.Duration

	// LossThreshold 连续未应答多少轮后判定服务消失
	LossThreshold int

	// DisableIPv4 禁用 IPv4
	DisableIPv4 bool

	// DisableIPv6 禁用 IPv6
	DisableIPv6 bool

	// Clock 时钟，nil 时使用真实时钟
	Clock clock.Clock
}

// DefaultBrowserConfig 返回默认配置
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		Domain:        "local",
		QueryInterval: 10 * time.Second,
		QueryTimeout:  3 * time.Second,
		LossThreshold: 3,
		DisableIPv4:   false,
		DisableIPv6:   true, // 默认禁用 IPv6 以避免问题
	}
}

// ============================================================================
//                              浏览器
// ============================================================================

// queryFunc 执行一轮查询，返回应答的实例名列表
type queryFunc func(ctx context.Context, serviceType string) ([]string, error)

// Browser 基于周期查询的平台浏览器
//
// 同一时刻只允许一个浏览会话。回调在会话 goroutine 上触发。
type Browser struct {
	cfg   BrowserConfig
	clk   clock.Clock
	query queryFunc

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

var _ discovery.Browser = (*Browser)(nil)

// NewBrowser 创建浏览器
func NewBrowser(cfg BrowserConfig) *Browser {
	def := DefaultBrowserConfig()
	if cfg.Domain == "" {
		cfg.Domain = def.Domain
	}
	if cfg.QueryInterval <= 0 {
		cfg.QueryInterval = def.QueryInterval
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = def.QueryTimeout
	}
	if cfg.LossThreshold <= 0 {
		cfg.LossThreshold = def.LossThreshold
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	b := &Browser{cfg: cfg, clk: clk}
	b.query = b.runQuery
	return b
}

// BeginDiscovery 实现 discovery.Browser
//
// 合法性问题与会话冲突通过 listener 的失败回调异步报告。
func (b *Browser) BeginDiscovery(serviceType string, listener discovery.BrowseListener) {
	if strings.Trim(serviceType, ".") == "" {
		go listener.OnStartDiscoveryFailed(serviceType, types.ErrCodeBadName)
		return
	}

	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		log.Warn("已有浏览会话在运行", "serviceType", serviceType)
		go listener.OnStartDiscoveryFailed(serviceType, types.ErrCodeBusy)
		return
	}
	b.running = true
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.wg.Add(1)
	b.mu.Unlock()

	go b.browseLoop(ctx, serviceType, listener)
}

// EndDiscovery 实现 discovery.Browser
//
// 没有活动会话时为空操作。
func (b *Browser) EndDiscovery() {
	b.mu.Lock()
	cancel := b.cancel
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Close 终止当前会话并等待其退出
func (b *Browser) Close() error {
	b.EndDiscovery()
	b.wg.Wait()
	return nil
}

// ============================================================================
//                              浏览会话
// ============================================================================

// browseLoop 浏览会话主循环
//
// 首轮查询成功即视为浏览生效；之后每个查询轮次报告新出现的
// 实例，并让连续缺席的实例超时。单轮查询失败只跳过该轮。
func (b *Browser) browseLoop(ctx context.Context, serviceType string, listener discovery.BrowseListener) {
	defer b.wg.Done()

	instances, err := b.query(ctx, serviceType)
	if err != nil {
		log.Warn("首轮查询失败", "serviceType", serviceType, "err", err)
		b.finishSession()
		listener.OnStartDiscoveryFailed(serviceType, types.ErrCodeNetwork)
		return
	}
	log.Info("浏览会话已建立", "serviceType", serviceType, "seen", len(instances))

	// 确认回调之前注册轮次定时器，确认送达后推进时钟即可触发下一轮
	ticker := b.clk.Ticker(b.cfg.QueryInterval)
	defer ticker.Stop()

	listener.OnDiscoveryStarted(serviceType)

	lastSeen := make(map[string]time.Time)
	b.observeRound(instances, lastSeen, listener)

	for {
		select {
		case <-ctx.Done():
			log.Info("浏览会话结束", "serviceType", serviceType)
			b.finishSession()
			listener.OnDiscoveryStopped(serviceType)
			return
		case <-ticker.C:
			instances, err := b.query(ctx, serviceType)
			if err != nil {
				if ctx.Err() != nil {
					continue // 下一轮 select 走停止分支
				}
				log.Warn("查询失败，跳过本轮", "serviceType", serviceType, "err", err)
				continue
			}
			b.observeRound(instances, lastSeen, listener)
			b.sweepExpired(lastSeen, listener)
		}
	}
}

// finishSession 结清会话状态，在发出确认回调之前调用
//
// 确认回调里可能同步再次 BeginDiscovery，此时 running 必须已复位。
func (b *Browser) finishSession() {
	b.mu.Lock()
	b.running = false
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.mu.Unlock()
}

// observeRound 处理一轮查询的应答
func (b *Browser) observeRound(instances []string, lastSeen map[string]time.Time, listener discovery.BrowseListener) {
	now := b.clk.Now()
	for _, instance := range instances {
		if instance == "" {
			continue
		}
		if _, ok := lastSeen[instance]; !ok {
			log.Debug("发现服务实例", "instance", instance)
			listener.OnServiceFound(instance)
		}
		lastSeen[instance] = now
	}
}

// sweepExpired 移除连续缺席超过阈值的实例
func (b *Browser) sweepExpired(lastSeen map[string]time.Time, listener discovery.BrowseListener) {
	ttl := time.Duration(b.cfg.LossThreshold) * b.cfg.QueryInterval
	now := b.clk.Now()
	for instance, seen := range lastSeen {
		if now.Sub(seen) > ttl {
			delete(lastSeen, instance)
			log.Debug("服务实例超时", "instance", instance)
			listener.OnServiceLost(instance)
		}
	}
}

// ============================================================================
//                              查询执行
// ============================================================================

// runQuery 执行一轮 mDNS 查询并收集实例名
func (b *Browser) runQuery(_ context.Context, serviceType string) ([]string, error) {
	params := &mdns.QueryParam{
		Service:             serviceType,
		Domain:              b.cfg.Domain,
		Timeout:             b.cfg.QueryTimeout,
		DisableIPv4:         b.cfg.DisableIPv4,
		DisableIPv6:         b.cfg.DisableIPv6,
		WantUnicastResponse: true,
	}

	entries := make(chan *mdns.ServiceEntry, 16)
	params.Entries = entries

	var instances []string
	done := make(chan struct{})
	go func() {
		defer close(done)
		seen := make(map[string]struct{})
		for entry := range entries {
			instance := instanceFromEntry(entry, serviceType, b.cfg.Domain)
			if instance == "" {
				continue
			}
			if _, ok := seen[instance]; ok {
				continue
			}
			seen[instance] = struct{}{}
			instances = append(instances, instance)
		}
	}()

	err := mdns.Query(params)
	close(entries)
	<-done

	if err != nil {
		return nil, fmt.Errorf("mDNS 查询失败: %w", err)
	}
	return instances, nil
}

// instanceFromEntry 从应答条目提取实例名标签
//
// 条目全名形如 "Printer._ipp._tcp.local."，去掉类型与域后缀
// 得到实例名。后缀不匹配的条目视为无效。
func instanceFromEntry(entry *mdns.ServiceEntry, serviceType, domain string) string {
	if entry == nil {
		return ""
	}
	name := strings.TrimSuffix(entry.Name, ".")
	suffix := "." + strings.Trim(serviceType, ".") + "." + strings.Trim(domain, ".")
	if !strings.HasSuffix(name, suffix) {
		return ""
	}
	return strings.TrimSuffix(name, suffix)
}
