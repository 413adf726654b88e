package coordinator

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dep2p/go-dnssd/pkg/interfaces/discovery"
	"github.com/dep2p/go-dnssd/pkg/types"
)

// ============================================================================
//                              测试替身
// ============================================================================

// fakeBrowser 可编程的平台浏览器
//
// autoConfirm 为真时，命令在独立 goroutine 上自动确认；
// 为假时由测试通过 confirmStart 等方法手工驱动确认时机。
type fakeBrowser struct {
	mu          sync.Mutex
	listener    discovery.BrowseListener
	serviceType string
	begins      int
	ends        int
	autoConfirm bool
}

var _ discovery.Browser = (*fakeBrowser)(nil)

func newFakeBrowser(autoConfirm bool) *fakeBrowser {
	return &fakeBrowser{autoConfirm: autoConfirm}
}

func (b *fakeBrowser) BeginDiscovery(serviceType string, l discovery.BrowseListener) {
	b.mu.Lock()
	b.begins++
	b.listener = l
	b.serviceType = serviceType
	auto := b.autoConfirm
	b.mu.Unlock()

	if auto {
		go l.OnDiscoveryStarted(serviceType)
	}
}

func (b *fakeBrowser) EndDiscovery() {
	b.mu.Lock()
	b.ends++
	l := b.listener
	st := b.serviceType
	auto := b.autoConfirm
	b.mu.Unlock()

	if auto && l != nil {
		go l.OnDiscoveryStopped(st)
	}
}

func (b *fakeBrowser) beginCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.begins
}

func (b *fakeBrowser) endCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ends
}

func (b *fakeBrowser) current() (discovery.BrowseListener, string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listener, b.serviceType
}

// confirmStart 模拟平台确认浏览生效
func (b *fakeBrowser) confirmStart() {
	l, st := b.current()
	l.OnDiscoveryStarted(st)
}

// confirmStop 模拟平台确认浏览停止
func (b *fakeBrowser) confirmStop() {
	l, st := b.current()
	l.OnDiscoveryStopped(st)
}

// failStart 模拟平台报告启动失败
func (b *fakeBrowser) failStart(code types.ErrorCode) {
	l, st := b.current()
	l.OnStartDiscoveryFailed(st, code)
}

// failStop 模拟平台报告停止失败
func (b *fakeBrowser) failStop(code types.ErrorCode) {
	l, st := b.current()
	l.OnStopDiscoveryFailed(st, code)
}

// found 模拟平台报告服务出现
func (b *fakeBrowser) found(instance string) {
	l, _ := b.current()
	l.OnServiceFound(instance)
}

// lost 模拟平台报告服务消失
func (b *fakeBrowser) lost(instance string) {
	l, _ := b.current()
	l.OnServiceLost(instance)
}

// ----------------------------------------------------------------------------

// resolveResult 预设的解析结果
type resolveResult struct {
	svc types.Service
	err error
}

// fakeResolver 可编程的解析器
//
// 未预设结果的键按 serviceForKey 合成成功记录。gate 非 nil 时
// 每次解析阻塞等待一个放行令牌，便于测试控制解析时序。
type fakeResolver struct {
	mu      sync.Mutex
	results map[string]resolveResult
	calls   []string
	gate    chan struct{}

	inFlight  atomic.Int32
	maxFlight atomic.Int32
}

var _ discovery.Resolver = (*fakeResolver)(nil)

func newFakeResolver() *fakeResolver {
	return &fakeResolver{results: make(map[string]resolveResult)}
}

// withGate 让后续解析阻塞等待放行令牌
func (r *fakeResolver) withGate() chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gate = make(chan struct{})
	return r.gate
}

// script 预设某个键的解析结果
func (r *fakeResolver) script(key string, svc types.Service, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[key] = resolveResult{svc: svc, err: err}
}

func (r *fakeResolver) Resolve(ctx context.Context, key string, timeout time.Duration) (types.Service, error) {
	cur := r.inFlight.Add(1)
	defer r.inFlight.Add(-1)
	for {
		prev := r.maxFlight.Load()
		if cur <= prev || r.maxFlight.CompareAndSwap(prev, cur) {
			break
		}
	}

	r.mu.Lock()
	r.calls = append(r.calls, key)
	res, scripted := r.results[key]
	gate := r.gate
	r.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return types.Service{}, ctx.Err()
		}
	}

	if scripted {
		return res.svc, res.err
	}
	return serviceForKey(key), nil
}

func (r *fakeResolver) callLog() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// serviceForKey 由服务键合成一条完整解析记录
func serviceForKey(key string) types.Service {
	instance := types.ParseInstanceName(key)
	return types.Service{
		Name:       instance,
		FullName:   key,
		Host:       instance + ".local",
		Port:       9000,
		Addresses:  []string{"192.168.1.10"},
		Attributes: map[string]string{"v": "1"},
	}
}

// ----------------------------------------------------------------------------

// recordingListener 记录事件轨迹的业务监听器
//
// 事件以紧凑字符串记录，如 "started"、"found:alpha"、
// "resolve_failed:alpha:network"。同时校验回调从不并发。
type recordingListener struct {
	mu       sync.Mutex
	events   []string
	lost     []types.Service
	resolved []types.Service

	inFlight  atomic.Int32
	maxFlight atomic.Int32
}

var _ discovery.Listener = (*recordingListener)(nil)

func newRecordingListener() *recordingListener {
	return &recordingListener{}
}

func (l *recordingListener) enter() {
	cur := l.inFlight.Add(1)
	for {
		prev := l.maxFlight.Load()
		if cur <= prev || l.maxFlight.CompareAndSwap(prev, cur) {
			return
		}
	}
}

func (l *recordingListener) record(evt string) {
	l.mu.Lock()
	l.events = append(l.events, evt)
	l.mu.Unlock()
	l.inFlight.Add(-1)
}

func (l *recordingListener) OnDiscoveryStarted(string) {
	l.enter()
	l.record("started")
}

func (l *recordingListener) OnStartDiscoveryFailed(_ string, code types.ErrorCode) {
	l.enter()
	l.record("start_failed:" + code.String())
}

func (l *recordingListener) OnDiscoveryStopped(string) {
	l.enter()
	l.record("stopped")
}

func (l *recordingListener) OnStopDiscoveryFailed(_ string, code types.ErrorCode) {
	l.enter()
	l.record("stop_failed:" + code.String())
}

func (l *recordingListener) OnServiceFound(svc types.Service) {
	l.enter()
	l.record("found:" + svc.Name)
}

func (l *recordingListener) OnServiceLost(svc types.Service) {
	l.enter()
	l.mu.Lock()
	l.lost = append(l.lost, svc)
	l.mu.Unlock()
	l.record("lost:" + svc.Name)
}

func (l *recordingListener) OnServiceResolved(svc types.Service) {
	l.enter()
	l.mu.Lock()
	l.resolved = append(l.resolved, svc)
	l.mu.Unlock()
	l.record("resolved:" + svc.Name)
}

func (l *recordingListener) OnResolveFailed(svc types.Service, code types.ErrorCode) {
	l.enter()
	l.record("resolve_failed:" + svc.Name + ":" + code.String())
}

// snapshot 返回事件轨迹副本
func (l *recordingListener) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

// count 统计带指定前缀的事件数
func (l *recordingListener) count(prefix string) int {
	n := 0
	for _, evt := range l.snapshot() {
		if strings.HasPrefix(evt, prefix) {
			n++
		}
	}
	return n
}

// has 报告事件是否出现过
func (l *recordingListener) has(evt string) bool {
	return l.count(evt) > 0
}

// lostRecords 返回 lost 事件携带的记录副本
func (l *recordingListener) lostRecords() []types.Service {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]types.Service(nil), l.lost...)
}

// resolvedRecords 返回 resolved 事件携带的记录副本
func (l *recordingListener) resolvedRecords() []types.Service {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]types.Service(nil), l.resolved...)
}
