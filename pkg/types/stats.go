// Package types 定义 go-dnssd 公共类型
//
// 本文件定义发现统计快照。
package types

// ============================================================================
//                              DiscoveryStats - 发现统计
// ============================================================================

// DiscoveryStats 某个时间点的发现统计快照
//
// Found 和 Lost 记录去抖之后对外可见的服务增减，FlapsAbsorbed
// 记录被去抖窗口吸收、未形成丢失通知的抖动次数。
type DiscoveryStats struct {
	// Found 发现的服务数
	Found int64 `json:"found"`

	// Lost 确认丢失的服务数
	Lost int64 `json:"lost"`

	// Resolved 解析成功次数
	Resolved int64 `json:"resolved"`

	// ResolveFailed 解析失败次数
	ResolveFailed int64 `json:"resolveFailed"`

	// FlapsAbsorbed 去抖吸收的抖动次数
	FlapsAbsorbed int64 `json:"flapsAbsorbed"`

	// QueuePeak 解析队列峰值长度
	QueuePeak int64 `json:"queuePeak"`
}
