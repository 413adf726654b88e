package mdns

import "errors"

// mDNS 适配层错误定义
var (
	// ErrNotFound 查询窗口内未收到任何应答
	ErrNotFound = errors.New("mdns: service not found")

	// ErrAnnounceActive 已有通告在发布中
	ErrAnnounceActive = errors.New("mdns: announcement already active")

	// ErrNoAddresses 未找到可发布的本地地址
	ErrNoAddresses = errors.New("mdns: no local addresses")
)
