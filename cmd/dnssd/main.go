// Package main 提供 dnssd 命令行入口
//
// 浏览局域网服务并打印事件流，可同时发布本机服务：
//
//	# 浏览打印机
//	dnssd -type _ipp._tcp
//
//	# 同时浏览多个类型，事件以 JSON 输出
//	dnssd -type _ipp._tcp,_airplay._tcp -json
//
//	# 发布本机服务并浏览同类
//	dnssd -type _demo._tcp -announce "My Box:8080" -txt v=1,path=/api
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-dnssd"
	"github.com/dep2p/go-dnssd/config"
	"github.com/dep2p/go-dnssd/internal/util/logger"
)

var log = logger.Logger("dnssd/cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
//
//	命令行参数：运行时覆盖 / 快速测试（「这次运行」想怎么跑）
//	JSON 配置文件：持久化配置 / 长期运行（「这个实例」的固定配置）
var (
	// ─────────────────────────────────────────────────────────────────────
	// 浏览参数
	// ─────────────────────────────────────────────────────────────────────
	serviceTypes = flag.String("type", "", "要浏览的服务类型，逗号分隔（如 _ipp._tcp,_http._tcp）")
	domain       = flag.String("domain", "", "浏览域（默认 local）")
	configFile   = flag.String("config", "", "配置文件路径（JSON，须包含 service_type）")

	// ─────────────────────────────────────────────────────────────────────
	// 时序参数
	// ─────────────────────────────────────────────────────────────────────
	debounce       = flag.Duration("debounce", 0, "服务消失的去抖窗口（0 = 立即确认）")
	resolveTimeout = flag.Duration("resolve-timeout", 5*time.Second, "单次解析超时")
	queryInterval  = flag.Duration("query-interval", 10*time.Second, "mDNS 查询周期")
	lossThreshold  = flag.Int("loss-threshold", 3, "连续缺席多少轮后判定服务消失")
	enableIPv6     = flag.Bool("ipv6", false, "同时查询 IPv6")

	// ─────────────────────────────────────────────────────────────────────
	// 通告参数
	// ─────────────────────────────────────────────────────────────────────
	announceSpec = flag.String("announce", "", "发布本机服务，格式 \"实例名:端口\"")
	announceTXT  = flag.String("txt", "", "通告的 TXT 属性，逗号分隔的 k=v")

	// ─────────────────────────────────────────────────────────────────────
	// 输出参数
	// ─────────────────────────────────────────────────────────────────────
	jsonOut     = flag.Bool("json", false, "事件以 JSON Lines 输出")
	verbose     = flag.Bool("verbose", false, "输出调试日志")
	showVersion = flag.Bool("version", false, "显示版本信息")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		fmt.Println(dnssd.VersionInfo())
		return nil
	}
	if *verbose {
		logger.SetGlobalLevel(slog.LevelDebug)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	types := splitTypes(*serviceTypes)
	if len(types) == 0 && cfg.ServiceType != "" {
		types = []string{cfg.ServiceType}
	}
	if len(types) == 0 {
		return fmt.Errorf("必须通过 -type 或配置文件指定服务类型")
	}

	opts := buildOptions()

	// 发布本机服务
	if *announceSpec != "" {
		shutdown, err := startAnnouncer(types[0], opts)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	// 每个服务类型一个追踪器
	trackers := make([]*dnssd.Tracker, 0, len(types))
	for _, st := range types {
		typeCfg := cfg
		typeCfg.ServiceType = st
		tracker, err := dnssd.NewFromConfig(typeCfg, newPrintListener(st, *jsonOut), opts...)
		if err != nil {
			closeAll(trackers)
			return fmt.Errorf("创建 %s 追踪器失败: %w", st, err)
		}
		trackers = append(trackers, tracker)
	}

	for _, tracker := range trackers {
		if err := tracker.Start(); err != nil {
			closeAll(trackers)
			return fmt.Errorf("启动 %s 失败: %w", tracker.ServiceType(), err)
		}
	}

	log.Info("开始浏览", "types", strings.Join(types, ","), "version", dnssd.Version)
	fmt.Fprintf(os.Stderr, "正在浏览 %s，按 Ctrl+C 退出\n", strings.Join(types, ", "))
	waitForSignal()

	fmt.Fprintln(os.Stderr, "\n正在关闭...")
	printStats(trackers)
	return closeAll(trackers)
}

// loadConfig 加载配置文件，未指定时使用默认配置
func loadConfig() (config.Config, error) {
	if *configFile == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.Load(*configFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("加载配置文件失败: %w", err)
	}
	return cfg, nil
}

// buildOptions 把显式设置的命令行参数转为选项
//
// 命令行参数优先于配置文件，仅覆盖用户实际传入的参数。
func buildOptions() []dnssd.Option {
	var opts []dnssd.Option
	if isFlagSet("domain") && *domain != "" {
		opts = append(opts, dnssd.WithDomain(*domain))
	}
	if isFlagSet("debounce") {
		opts = append(opts, dnssd.WithDebounce(*debounce))
	}
	if isFlagSet("resolve-timeout") {
		opts = append(opts, dnssd.WithResolveTimeout(*resolveTimeout))
	}
	if isFlagSet("query-interval") {
		opts = append(opts, dnssd.WithQueryInterval(*queryInterval))
	}
	if isFlagSet("loss-threshold") {
		opts = append(opts, dnssd.WithLossThreshold(*lossThreshold))
	}
	if isFlagSet("ipv6") {
		opts = append(opts, dnssd.WithIPv6(*enableIPv6))
	}
	return opts
}

// isFlagSet 检查命令行参数是否被显式设置
func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// splitTypes 解析逗号分隔的服务类型列表
func splitTypes(s string) []string {
	var types []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			types = append(types, part)
		}
	}
	return types
}

// startAnnouncer 按 -announce 参数发布本机服务
func startAnnouncer(serviceType string, opts []dnssd.Option) (func(), error) {
	instance, port, err := parseAnnounceSpec(*announceSpec)
	if err != nil {
		return nil, err
	}

	announcer, err := dnssd.NewAnnouncer(serviceType, opts...)
	if err != nil {
		return nil, fmt.Errorf("创建通告器失败: %w", err)
	}
	if err := announcer.Announce(instance, port, parseTXT(*announceTXT)); err != nil {
		return nil, fmt.Errorf("发布服务失败: %w", err)
	}

	log.Info("服务已发布", "instance", instance, "type", serviceType, "port", port)
	return func() {
		if err := announcer.Shutdown(); err != nil {
			log.Warn("撤销通告失败", "err", err)
		}
	}, nil
}

// parseAnnounceSpec 解析 "实例名:端口"
//
// 实例名允许包含冒号，以最后一个冒号分隔端口。
func parseAnnounceSpec(spec string) (string, int, error) {
	idx := strings.LastIndexByte(spec, ':')
	if idx <= 0 || idx == len(spec)-1 {
		return "", 0, fmt.Errorf("通告格式应为 \"实例名:端口\": %q", spec)
	}
	port, err := strconv.Atoi(spec[idx+1:])
	if err != nil || port <= 0 || port > 65535 {
		return "", 0, fmt.Errorf("非法端口: %q", spec[idx+1:])
	}
	return spec[:idx], port, nil
}

// parseTXT 解析逗号分隔的 k=v 列表
func parseTXT(s string) map[string]string {
	if s == "" {
		return nil
	}
	attrs := make(map[string]string)
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key, value, _ := strings.Cut(item, "=")
		if key != "" {
			attrs[key] = value
		}
	}
	return attrs
}

// closeAll 并发关闭全部追踪器
func closeAll(trackers []*dnssd.Tracker) error {
	var g errgroup.Group
	for _, tracker := range trackers {
		g.Go(tracker.Close)
	}
	return g.Wait()
}

// printStats 打印各追踪器的运行统计
func printStats(trackers []*dnssd.Tracker) {
	for _, tracker := range trackers {
		stats := tracker.Stats()
		log.Info("运行统计",
			"type", tracker.ServiceType(),
			"found", stats.Found,
			"lost", stats.Lost,
			"resolved", stats.Resolved,
			"resolveFailed", stats.ResolveFailed,
			"flapsAbsorbed", stats.FlapsAbsorbed,
			"queuePeak", stats.QueuePeak)
	}
}

// waitForSignal 等待退出信号
func waitForSignal() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	<-signals
}

// ═══════════════════════════════════════════════════════════════════════════
// 事件输出
// ═══════════════════════════════════════════════════════════════════════════

// eventRecord JSON Lines 输出的事件记录
type eventRecord struct {
	Time    string         `json:"time"`
	Type    string         `json:"type"`
	Service string         `json:"serviceType"`
	Record  *dnssd.Service `json:"service,omitempty"`
	Code    string         `json:"code,omitempty"`
}

// newPrintListener 构建把事件打印到标准输出的监听器
func newPrintListener(serviceType string, asJSON bool) dnssd.Listener {
	emit := printText
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		emit = func(rec eventRecord) {
			if err := enc.Encode(rec); err != nil {
				log.Warn("输出事件失败", "err", err)
			}
		}
	}
	event := func(evt string, svc *dnssd.Service, code string) eventRecord {
		return eventRecord{
			Time:    time.Now().Format(time.RFC3339),
			Type:    evt,
			Service: serviceType,
			Record:  svc,
			Code:    code,
		}
	}

	return dnssd.ListenerFuncs{
		DiscoveryStarted: func(string) { emit(event("discovery_started", nil, "")) },
		StartDiscoveryFailed: func(_ string, code dnssd.ErrorCode) {
			emit(event("start_discovery_failed", nil, code.String()))
		},
		DiscoveryStopped: func(string) { emit(event("discovery_stopped", nil, "")) },
		StopDiscoveryFailed: func(_ string, code dnssd.ErrorCode) {
			emit(event("stop_discovery_failed", nil, code.String()))
		},
		ServiceFound: func(svc dnssd.Service) { emit(event("service_found", &svc, "")) },
		ServiceLost:  func(svc dnssd.Service) { emit(event("service_lost", &svc, "")) },
		ServiceResolved: func(svc dnssd.Service) {
			emit(event("service_resolved", &svc, ""))
		},
		ResolveFailed: func(svc dnssd.Service, code dnssd.ErrorCode) {
			emit(event("resolve_failed", &svc, code.String()))
		},
	}
}

// printText 人类可读的事件输出
func printText(rec eventRecord) {
	switch rec.Type {
	case "discovery_started":
		fmt.Printf("[%s] 浏览已生效\n", rec.Service)
	case "discovery_stopped":
		fmt.Printf("[%s] 浏览已停止\n", rec.Service)
	case "start_discovery_failed", "stop_discovery_failed":
		fmt.Printf("[%s] 浏览命令失败 (%s)\n", rec.Service, rec.Code)
	case "service_found":
		fmt.Printf("[%s] + %s\n", rec.Service, rec.Record.Name)
	case "service_lost":
		fmt.Printf("[%s] - %s\n", rec.Service, rec.Record.Name)
	case "service_resolved":
		svc := rec.Record
		fmt.Printf("[%s] = %s %s:%d %v %v\n",
			rec.Service, svc.Name, svc.Host, svc.Port, svc.Addresses, svc.Attributes)
	case "resolve_failed":
		fmt.Printf("[%s] ! %s 解析失败 (%s)\n", rec.Service, rec.Record.Name, rec.Code)
	}
}
