package dnssd

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-dnssd/config"
	"github.com/dep2p/go-dnssd/pkg/interfaces/discovery"
	"github.com/dep2p/go-dnssd/pkg/types"
)

// ============================================================================
//                              测试替身
// ============================================================================

// stubBrowser 立即确认命令的平台浏览器
type stubBrowser struct {
	mu       sync.Mutex
	listener discovery.BrowseListener
	begins   int
	ends     int
}

func (b *stubBrowser) BeginDiscovery(serviceType string, l discovery.BrowseListener) {
	b.mu.Lock()
	b.listener = l
	b.begins++
	b.mu.Unlock()
	go l.OnDiscoveryStarted(serviceType)
}

func (b *stubBrowser) EndDiscovery() {
	b.mu.Lock()
	l := b.listener
	b.ends++
	b.mu.Unlock()
	if l != nil {
		go l.OnDiscoveryStopped("")
	}
}

func (b *stubBrowser) found(instance string) {
	b.mu.Lock()
	l := b.listener
	b.mu.Unlock()
	if l != nil {
		l.OnServiceFound(instance)
	}
}

// stubResolver 由服务键合成固定记录
type stubResolver struct{}

func (stubResolver) Resolve(_ context.Context, serviceKey string, _ time.Duration) (types.Service, error) {
	instance := types.ParseInstanceName(serviceKey)
	return types.Service{
		Name:      instance,
		FullName:  strings.Trim(serviceKey, "."),
		Host:      instance + ".local",
		Port:      8080,
		Addresses: []string{"192.168.1.2"},
	}, nil
}

// eventTrace 顺序记录监听器事件
type eventTrace struct {
	mu     sync.Mutex
	events []string
}

func (tr *eventTrace) add(evt string) {
	tr.mu.Lock()
	tr.events = append(tr.events, evt)
	tr.mu.Unlock()
}

func (tr *eventTrace) has(evt string) bool {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	for _, e := range tr.events {
		if e == evt {
			return true
		}
	}
	return false
}

// traceListener 把全部回调写入轨迹，同时验证 ListenerFuncs 适配器
func traceListener(tr *eventTrace) ListenerFuncs {
	return ListenerFuncs{
		DiscoveryStarted: func(string) { tr.add("started") },
		StartDiscoveryFailed: func(_ string, code ErrorCode) {
			tr.add("start_failed:" + code.String())
		},
		DiscoveryStopped: func(string) { tr.add("stopped") },
		StopDiscoveryFailed: func(_ string, code ErrorCode) {
			tr.add("stop_failed:" + code.String())
		},
		ServiceFound:    func(svc Service) { tr.add("found:" + svc.Name) },
		ServiceLost:     func(svc Service) { tr.add("lost:" + svc.Name) },
		ServiceResolved: func(svc Service) { tr.add("resolved:" + svc.Name) },
		ResolveFailed: func(svc Service, code ErrorCode) {
			tr.add("resolve_failed:" + svc.Name + ":" + code.String())
		},
	}
}

// ============================================================================
//                              构造验证测试
// ============================================================================

func TestNewValidation(t *testing.T) {
	listener := ListenerFuncs{}

	t.Run("服务类型为空", func(t *testing.T) {
		_, err := New("", listener)
		require.ErrorIs(t, err, ErrMissingServiceType)
	})

	t.Run("监听器为空", func(t *testing.T) {
		_, err := New("_ipp._tcp", nil)
		require.ErrorIs(t, err, ErrNilListener)
	})

	t.Run("负去抖窗口", func(t *testing.T) {
		_, err := New("_ipp._tcp", listener, WithDebounce(-time.Second))
		require.ErrorIs(t, err, ErrInvalidDebounce)
		assert.Contains(t, err.Error(), "去抖窗口")
	})

	t.Run("零解析超时", func(t *testing.T) {
		_, err := New("_ipp._tcp", listener, WithResolveTimeout(0))
		require.ErrorIs(t, err, ErrInvalidResolveTimeout)
	})

	t.Run("空浏览域", func(t *testing.T) {
		_, err := New("_ipp._tcp", listener, WithDomain(""))
		require.Error(t, err)
	})

	t.Run("空浏览器注入", func(t *testing.T) {
		_, err := New("_ipp._tcp", listener, WithBrowser(nil))
		require.Error(t, err)
	})
}

// ============================================================================
//                              追踪流程测试
// ============================================================================

func TestTrackerFlow(t *testing.T) {
	browser := &stubBrowser{}
	tr := &eventTrace{}

	tracker, err := New("_test._tcp", traceListener(tr),
		WithBrowser(browser),
		WithResolver(stubResolver{}),
		WithDebounce(0),
	)
	require.NoError(t, err)
	defer tracker.Close()

	assert.Equal(t, "_test._tcp", tracker.ServiceType())
	assert.Equal(t, StateStopped, tracker.State())

	require.NoError(t, tracker.Start())
	require.Eventually(t, func() bool {
		return tr.has("started")
	}, 2*time.Second, 2*time.Millisecond)
	assert.Equal(t, StateStarted, tracker.State())

	browser.found("alpha")
	require.Eventually(t, func() bool {
		return tr.has("resolved:alpha")
	}, 2*time.Second, 2*time.Millisecond)
	require.True(t, tr.has("found:alpha"))

	services := tracker.Services()
	require.Len(t, services, 1)
	assert.Equal(t, "alpha", services[0].Name)
	assert.Equal(t, "alpha._test._tcp.local", services[0].FullName)
	assert.Equal(t, 8080, services[0].Port)

	stats := tracker.Stats()
	assert.Equal(t, int64(1), stats.Found)
	assert.Equal(t, int64(1), stats.Resolved)

	require.NoError(t, tracker.Stop())
	require.Eventually(t, func() bool {
		return tr.has("stopped")
	}, 2*time.Second, 2*time.Millisecond)
	assert.Equal(t, StateStopped, tracker.State())
	assert.Empty(t, tracker.Services())
}

func TestTrackerCloseIdempotent(t *testing.T) {
	tracker, err := New("_test._tcp", ListenerFuncs{},
		WithBrowser(&stubBrowser{}),
		WithResolver(stubResolver{}),
	)
	require.NoError(t, err)

	require.NoError(t, tracker.Close())
	require.NoError(t, tracker.Close())

	require.ErrorIs(t, tracker.Start(), ErrClosed)
	require.ErrorIs(t, tracker.Stop(), ErrClosed)
	assert.Equal(t, StateStopped, tracker.State())
}

// ============================================================================
//                              配置构造测试
// ============================================================================

func TestNewFromConfig(t *testing.T) {
	t.Run("合法配置", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.ServiceType = "_http._tcp"

		tracker, err := NewFromConfig(cfg, ListenerFuncs{},
			WithBrowser(&stubBrowser{}),
			WithResolver(stubResolver{}),
		)
		require.NoError(t, err)
		defer tracker.Close()

		assert.Equal(t, "_http._tcp", tracker.ServiceType())
	})

	t.Run("非法配置", func(t *testing.T) {
		_, err := NewFromConfig(config.Config{}, ListenerFuncs{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validate config")
	})
}

// ============================================================================
//                              通告器测试
// ============================================================================

func TestNewAnnouncerValidation(t *testing.T) {
	t.Run("服务类型为空", func(t *testing.T) {
		_, err := NewAnnouncer("")
		require.ErrorIs(t, err, ErrMissingServiceType)
	})

	t.Run("合法服务类型", func(t *testing.T) {
		announcer, err := NewAnnouncer("_ipp._tcp", WithDomain("lan"))
		require.NoError(t, err)
		require.NotNil(t, announcer)
		require.NoError(t, announcer.Shutdown())
	})
}

// ============================================================================
//                              版本信息测试
// ============================================================================

func TestVersionInfo(t *testing.T) {
	assert.Contains(t, VersionInfo(), Version)

	oldCommit, oldDate := GitCommit, BuildDate
	defer func() { GitCommit, BuildDate = oldCommit, oldDate }()

	GitCommit = "0123456789abcdef"
	BuildDate = "2026-01-01"
	info := VersionInfo()
	assert.Contains(t, info, "01234567")
	assert.NotContains(t, info, "89abcdef")
	assert.Contains(t, info, "2026-01-01")
}
