// Package types 定义 go-dnssd 公共类型
//
// 本文件定义服务记录与服务键的派生/拆分。
package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/miekg/dns"
)

// ErrInvalidServiceKey 服务键格式非法
var ErrInvalidServiceKey = errors.New("invalid service key")

// ============================================================================
//                              Service - 服务记录
// ============================================================================

// Service 局域网服务记录
//
// 只有成功的解析才会产生完整记录；found 事件携带的记录
// 仅填充 Name 字段。Addresses 为有序列表，首个地址为首选地址。
// JSON 字段名与桥接层保持一致。
type Service struct {
	// Name 实例名，如 "Living Room Printer"
	Name string `json:"name"`

	// FullName 完整实例名，如 "Living Room Printer._ipp._tcp.local"
	FullName string `json:"fullName"`

	// Host 目标主机名（SRV target）
	Host string `json:"host"`

	// Port 服务端口
	Port int `json:"port"`

	// Addresses 已解析地址，按偏好排序
	Addresses []string `json:"addresses"`

	// Attributes TXT 键值对
	Attributes map[string]string `json:"txt"`
}

// Key 返回记录的规范服务键
func (s Service) Key() string {
	return normalizeKey(s.FullName)
}

// String 返回简短的人类可读表示
func (s Service) String() string {
	return fmt.Sprintf("%s (%s:%d)", s.Name, s.Host, s.Port)
}

// ============================================================================
//                              服务键派生与拆分
// ============================================================================

// ServiceKey 由实例名、服务类型和域派生规范服务键
//
// 形如 "Living Room._ipp._tcp.local"。实例名中的字面点需按
// DNS 转义（"\."）。domain 为空时使用 "local"。
func ServiceKey(instance, serviceType, domain string) string {
	if domain == "" {
		domain = "local"
	}
	return normalizeKey(instance) + "." + normalizeKey(serviceType) + "." + normalizeKey(domain)
}

// SplitServiceKey 将规范服务键拆分为实例名、服务类型和域
//
// 实例名可以包含转义点；服务类型由以 "_" 开头的标签段组成，
// 其后的标签构成域。无法定位类型段时返回 ErrInvalidServiceKey。
func SplitServiceKey(key string) (instance, serviceType, domain string, err error) {
	labels := dns.SplitDomainName(dns.Fqdn(strings.TrimSpace(key)))
	if len(labels) < 3 {
		return "", "", "", fmt.Errorf("%w: %q", ErrInvalidServiceKey, key)
	}

	// 定位首个类型标签
	start := 0
	for start < len(labels) && !strings.HasPrefix(labels[start], "_") {
		start++
	}
	end := start
	for end < len(labels) && strings.HasPrefix(labels[end], "_") {
		end++
	}
	if start == 0 || start == len(labels) || end == len(labels) {
		return "", "", "", fmt.Errorf("%w: %q", ErrInvalidServiceKey, key)
	}

	instance = unescapeLabel(strings.Join(labels[:start], "."))
	serviceType = strings.Join(labels[start:end], ".")
	domain = strings.Join(labels[end:], ".")
	return instance, serviceType, domain, nil
}

// ParseInstanceName 提取完整实例名的首标签作为实例名
//
// 如 "Printer._ipp._tcp.local." 返回 "Printer"。
func ParseInstanceName(fullName string) string {
	labels := dns.SplitDomainName(dns.Fqdn(fullName))
	if len(labels) == 0 {
		return ""
	}
	return unescapeLabel(labels[0])
}

// normalizeKey 去除首尾的点
func normalizeKey(s string) string {
	return strings.Trim(s, ".")
}

// unescapeLabel 还原标签中的 DNS 转义点
func unescapeLabel(label string) string {
	if !strings.Contains(label, "\\") {
		return label
	}
	var b strings.Builder
	b.Grow(len(label))
	escaped := false
	for i := 0; i < len(label); i++ {
		c := label[i]
		if escaped {
			b.WriteByte(c)
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
