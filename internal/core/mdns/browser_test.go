package mdns

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/hashicorp/mdns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-dnssd/pkg/types"
)

// ============================================================================
//                              测试替身
// ============================================================================

// recordingBrowseListener 记录平台回调轨迹
type recordingBrowseListener struct {
	mu        sync.Mutex
	events    []string
	onStopped func() // 非 nil 时在 stopped 回调内同步执行
}

func (l *recordingBrowseListener) record(evt string) {
	l.mu.Lock()
	l.events = append(l.events, evt)
	l.mu.Unlock()
}

func (l *recordingBrowseListener) OnDiscoveryStarted(string) { l.record("started") }

func (l *recordingBrowseListener) OnStartDiscoveryFailed(_ string, code types.ErrorCode) {
	l.record("start_failed:" + code.String())
}

func (l *recordingBrowseListener) OnDiscoveryStopped(string) {
	l.record("stopped")
	if l.onStopped != nil {
		l.onStopped()
	}
}

func (l *recordingBrowseListener) OnStopDiscoveryFailed(_ string, code types.ErrorCode) {
	l.record("stop_failed:" + code.String())
}

func (l *recordingBrowseListener) OnServiceFound(instance string) { l.record("found:" + instance) }

func (l *recordingBrowseListener) OnServiceLost(instance string) { l.record("lost:" + instance) }

func (l *recordingBrowseListener) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

func (l *recordingBrowseListener) has(evt string) bool {
	for _, e := range l.snapshot() {
		if e == evt {
			return true
		}
	}
	return false
}

func (l *recordingBrowseListener) count(prefix string) int {
	n := 0
	for _, e := range l.snapshot() {
		if strings.HasPrefix(e, prefix) {
			n++
		}
	}
	return n
}

// queryRound 预设的一轮查询结果
type queryRound struct {
	instances []string
	err       error
}

// scriptedQuery 按轮次回放查询结果，轮次耗尽后重复最后一轮
type scriptedQuery struct {
	mu     sync.Mutex
	rounds []queryRound
	calls  int
}

func (q *scriptedQuery) next(context.Context, string) ([]string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	idx := q.calls
	q.calls++
	if idx >= len(q.rounds) {
		idx = len(q.rounds) - 1
	}
	round := q.rounds[idx]
	return append([]string(nil), round.instances...), round.err
}

func (q *scriptedQuery) callCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.calls
}

// newTestBrowser 构建注入了脚本查询与模拟时钟的浏览器
func newTestBrowser(t *testing.T, rounds ...queryRound) (*Browser, *scriptedQuery, *clock.Mock) {
	t.Helper()
	clk := clock.NewMock()
	b := NewBrowser(BrowserConfig{
		QueryInterval: 10 * time.Second,
		QueryTimeout:  time.Second,
		LossThreshold: 3,
		Clock:         clk,
	})
	script := &scriptedQuery{rounds: rounds}
	b.query = script.next
	t.Cleanup(func() { _ = b.Close() })
	return b, script, clk
}

// advanceRound 推进一个查询轮次并等待其完成
func advanceRound(t *testing.T, clk *clock.Mock, script *scriptedQuery) {
	t.Helper()
	want := script.callCount() + 1
	clk.Add(10 * time.Second)
	require.Eventually(t, func() bool {
		return script.callCount() >= want
	}, 2*time.Second, 2*time.Millisecond, "查询轮次未执行")
}

// ============================================================================
//                              配置测试
// ============================================================================

func TestDefaultBrowserConfig(t *testing.T) {
	cfg := DefaultBrowserConfig()

	assert.Equal(t, "local", cfg.Domain)
	assert.Greater(t, cfg.QueryInterval, time.Duration(0))
	assert.Greater(t, cfg.QueryTimeout, time.Duration(0))
	assert.Greater(t, cfg.LossThreshold, 0)
	assert.True(t, cfg.DisableIPv6)
}

func TestNewBrowserFillsDefaults(t *testing.T) {
	b := NewBrowser(BrowserConfig{})

	def := DefaultBrowserConfig()
	assert.Equal(t, def.Domain, b.cfg.Domain)
	assert.Equal(t, def.QueryInterval, b.cfg.QueryInterval)
	assert.Equal(t, def.QueryTimeout, b.cfg.QueryTimeout)
	assert.Equal(t, def.LossThreshold, b.cfg.LossThreshold)
	assert.NotNil(t, b.clk)
}

// ============================================================================
//                              会话测试
// ============================================================================

func TestBrowserStartConfirmsAfterFirstQuery(t *testing.T) {
	b, _, _ := newTestBrowser(t, queryRound{instances: []string{"alpha"}})
	l := &recordingBrowseListener{}

	b.BeginDiscovery("_test._tcp", l)
	require.Eventually(t, func() bool {
		return l.has("found:alpha")
	}, 2*time.Second, 2*time.Millisecond)
	require.Equal(t, []string{"started", "found:alpha"}, l.snapshot())
}

func TestBrowserFirstQueryFailureReportsStartFailed(t *testing.T) {
	b, _, _ := newTestBrowser(t,
		queryRound{err: context.DeadlineExceeded},
		queryRound{instances: []string{"alpha"}},
	)
	l := &recordingBrowseListener{}

	b.BeginDiscovery("_test._tcp", l)
	require.Eventually(t, func() bool {
		return l.has("start_failed:network")
	}, 2*time.Second, 2*time.Millisecond)

	// 失败后会话已结清，可立即重试
	b.BeginDiscovery("_test._tcp", l)
	require.Eventually(t, func() bool {
		return l.has("started")
	}, 2*time.Second, 2*time.Millisecond)
}

func TestBrowserRejectsConcurrentSessions(t *testing.T) {
	b, _, _ := newTestBrowser(t, queryRound{instances: []string{"alpha"}})
	l := &recordingBrowseListener{}

	b.BeginDiscovery("_test._tcp", l)
	require.Eventually(t, func() bool {
		return l.has("started")
	}, 2*time.Second, 2*time.Millisecond)

	b.BeginDiscovery("_test._tcp", l)
	require.Eventually(t, func() bool {
		return l.has("start_failed:busy")
	}, 2*time.Second, 2*time.Millisecond)
}

func TestBrowserRejectsEmptyServiceType(t *testing.T) {
	b, script, _ := newTestBrowser(t, queryRound{})
	l := &recordingBrowseListener{}

	b.BeginDiscovery("", l)
	require.Eventually(t, func() bool {
		return l.has("start_failed:bad_name")
	}, 2*time.Second, 2*time.Millisecond)
	require.Zero(t, script.callCount(), "非法服务类型不应触发查询")
}

func TestBrowserRoundsSynthesizeFoundAndLost(t *testing.T) {
	b, script, clk := newTestBrowser(t,
		queryRound{instances: []string{"alpha", "beta"}},
		queryRound{instances: []string{"alpha"}},
	)
	l := &recordingBrowseListener{}

	b.BeginDiscovery("_test._tcp", l)
	require.Eventually(t, func() bool {
		return l.has("found:alpha") && l.has("found:beta")
	}, 2*time.Second, 2*time.Millisecond)

	// beta 连续缺席，超过阈值轮次后报告消失
	advanceRound(t, clk, script) // t=10s，缺席 10s
	advanceRound(t, clk, script) // t=20s，缺席 20s
	advanceRound(t, clk, script) // t=30s，缺席 30s，未超阈值
	require.False(t, l.has("lost:beta"))

	advanceRound(t, clk, script) // t=40s，缺席 40s，超过 3*10s
	require.Eventually(t, func() bool {
		return l.has("lost:beta")
	}, 2*time.Second, 2*time.Millisecond)

	assert.Equal(t, 1, l.count("lost:"), "只有缺席实例被判定消失")
	assert.Equal(t, 1, l.count("found:alpha"), "持续在场的实例不应重复报告")
}

func TestBrowserSingleRoundFailureContinues(t *testing.T) {
	b, script, clk := newTestBrowser(t,
		queryRound{instances: []string{"alpha"}},
		queryRound{err: context.DeadlineExceeded},
		queryRound{instances: []string{"alpha", "beta"}},
	)
	l := &recordingBrowseListener{}

	b.BeginDiscovery("_test._tcp", l)
	require.Eventually(t, func() bool {
		return l.has("started")
	}, 2*time.Second, 2*time.Millisecond)

	advanceRound(t, clk, script) // 本轮失败，仅跳过
	advanceRound(t, clk, script)
	require.Eventually(t, func() bool {
		return l.has("found:beta")
	}, 2*time.Second, 2*time.Millisecond)
	require.False(t, l.has("stopped"), "单轮失败不应终止会话")
}

func TestBrowserEndDiscoveryConfirmsStop(t *testing.T) {
	b, script, _ := newTestBrowser(t, queryRound{instances: []string{"alpha"}})
	l := &recordingBrowseListener{}

	b.BeginDiscovery("_test._tcp", l)
	require.Eventually(t, func() bool {
		return l.has("started")
	}, 2*time.Second, 2*time.Millisecond)

	b.EndDiscovery()
	require.Eventually(t, func() bool {
		return l.has("stopped")
	}, 2*time.Second, 2*time.Millisecond)

	calls := script.callCount()
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, calls, script.callCount(), "停止后不应再有查询")

	// 没有活动会话时 EndDiscovery 为空操作
	require.NotPanics(t, func() { b.EndDiscovery() })
}

func TestBrowserRestartFromStoppedCallback(t *testing.T) {
	b, _, _ := newTestBrowser(t, queryRound{instances: []string{"alpha"}})
	l := &recordingBrowseListener{}
	// 模拟协调器在停止确认回调里立即重启
	l.onStopped = func() {
		b.BeginDiscovery("_test._tcp", l)
	}

	b.BeginDiscovery("_test._tcp", l)
	require.Eventually(t, func() bool {
		return l.has("started")
	}, 2*time.Second, 2*time.Millisecond)

	b.EndDiscovery()
	require.Eventually(t, func() bool {
		return l.count("started") == 2
	}, 2*time.Second, 2*time.Millisecond)
	require.False(t, l.has("start_failed:busy"), "停止确认后重启不应报忙")
}

// ============================================================================
//                              条目解析测试
// ============================================================================

func TestInstanceFromEntry(t *testing.T) {
	tests := []struct {
		name  string
		entry *mdns.ServiceEntry
		want  string
	}{
		{
			name:  "常规条目",
			entry: &mdns.ServiceEntry{Name: "Printer._ipp._tcp.local."},
			want:  "Printer",
		},
		{
			name:  "无结尾点",
			entry: &mdns.ServiceEntry{Name: "Printer._ipp._tcp.local"},
			want:  "Printer",
		},
		{
			name:  "实例名含转义点",
			entry: &mdns.ServiceEntry{Name: `web\.keeper._ipp._tcp.local.`},
			want:  `web\.keeper`,
		},
		{
			name:  "后缀不匹配",
			entry: &mdns.ServiceEntry{Name: "Printer._http._tcp.local."},
			want:  "",
		},
		{
			name:  "空条目",
			entry: nil,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, instanceFromEntry(tt.entry, "_ipp._tcp", "local"))
		})
	}
}
