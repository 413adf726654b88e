package dnssd

import (
	"github.com/dep2p/go-dnssd/internal/core/coordinator"
	"github.com/dep2p/go-dnssd/internal/core/mdns"
)

// 公共错误定义
//
// 追踪器把内部错误原样向上传递，这里导出别名供调用方用
// errors.Is 判定，不必接触 internal 包。
var (
	// ────────────────────────────────────────────────────────────────────────
	// 追踪器生命周期错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrClosed 追踪器已关闭
	ErrClosed = coordinator.ErrClosed

	// ErrMissingServiceType 服务类型为空
	ErrMissingServiceType = coordinator.ErrMissingServiceType

	// ErrNilListener 监听器为空
	ErrNilListener = coordinator.ErrNilListener

	// ────────────────────────────────────────────────────────────────────────
	// 参数校验错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrInvalidDebounce 去抖窗口为负
	ErrInvalidDebounce = coordinator.ErrInvalidDebounce

	// ErrInvalidResolveTimeout 解析超时不为正
	ErrInvalidResolveTimeout = coordinator.ErrInvalidResolveTimeout

	// ────────────────────────────────────────────────────────────────────────
	// 通告相关错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrAnnounceActive 已有通告在发布中
	ErrAnnounceActive = mdns.ErrAnnounceActive

	// ErrNoAddresses 未找到可发布的本地地址
	ErrNoAddresses = mdns.ErrNoAddresses
)
