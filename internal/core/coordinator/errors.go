package coordinator

import "errors"

// 协调器错误定义
var (
	// ErrClosed 协调器已关闭
	ErrClosed = errors.New("coordinator: closed")

	// ErrMissingServiceType 未指定服务类型
	ErrMissingServiceType = errors.New("coordinator: missing service type")

	// ErrNilBrowser 未提供浏览器
	ErrNilBrowser = errors.New("coordinator: nil browser")

	// ErrNilResolver 未提供解析器
	ErrNilResolver = errors.New("coordinator: nil resolver")

	// ErrNilListener 未提供监听器
	ErrNilListener = errors.New("coordinator: nil listener")

	// ErrInvalidDebounce 去抖窗口为负
	ErrInvalidDebounce = errors.New("coordinator: negative debounce window")

	// ErrInvalidResolveTimeout 解析超时不为正
	ErrInvalidResolveTimeout = errors.New("coordinator: non-positive resolve timeout")
)
