package mdns

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"

	"github.com/dep2p/go-dnssd/pkg/interfaces/discovery"
	"github.com/dep2p/go-dnssd/pkg/types"
)

// ============================================================================
//                              解析器
// ============================================================================

// lookupFunc 发起定向实例查询，应答流入 entries
//
// 实现必须在 ctx 结束后关闭 entries。
type lookupFunc func(ctx context.Context, instance, service, domain string, entries chan *zeroconf.ServiceEntry) error

// Resolver 一次性服务解析器
//
// 每次 Resolve 发起独立的定向查询，取首个完整应答。
type Resolver struct {
	lookup lookupFunc
}

var _ discovery.Resolver = (*Resolver)(nil)

// NewResolver 创建解析器
func NewResolver() *Resolver {
	return &Resolver{lookup: zeroconfLookup}
}

// Resolve 实现 discovery.Resolver
func (r *Resolver) Resolve(ctx context.Context, serviceKey string, timeout time.Duration) (types.Service, error) {
	instance, serviceType, domain, err := types.SplitServiceKey(serviceKey)
	if err != nil {
		return types.Service{}, fmt.Errorf("拆分服务键失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry, 16)
	if err := r.lookup(ctx, instance, serviceType, domain, entries); err != nil {
		return types.Service{}, fmt.Errorf("查询 %q 失败: %w", serviceKey, err)
	}

	for {
		select {
		case <-ctx.Done():
			return types.Service{}, ctx.Err()
		case entry, ok := <-entries:
			if !ok {
				if err := ctx.Err(); err != nil {
					return types.Service{}, err
				}
				return types.Service{}, ErrNotFound
			}
			// 跳过既无端口也无地址的占位应答
			if entry == nil || (entry.Port == 0 && len(entry.AddrIPv4)+len(entry.AddrIPv6) == 0) {
				continue
			}
			svc := serviceFromEntry(serviceKey, instance, entry)
			log.Debug("解析到服务", "key", serviceKey, "host", svc.Host, "port", svc.Port)
			return svc, nil
		}
	}
}

// zeroconfLookup 默认的定向查询实现
func zeroconfLookup(ctx context.Context, instance, service, domain string, entries chan *zeroconf.ServiceEntry) error {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("创建 zeroconf 解析器失败: %w", err)
	}
	return resolver.Lookup(ctx, instance, service, domain, entries)
}

// serviceFromEntry 把应答条目转换为服务记录
//
// FullName 取请求的服务键而非应答字段，保证与协调器的
// 服务表键一致。IPv4 地址排在 IPv6 之前。
func serviceFromEntry(serviceKey, instance string, entry *zeroconf.ServiceEntry) types.Service {
	svc := types.Service{
		Name:       instance,
		FullName:   strings.Trim(strings.TrimSpace(serviceKey), "."),
		Host:       strings.TrimSuffix(entry.HostName, "."),
		Port:       entry.Port,
		Attributes: txtToAttributes(entry.Text),
	}
	for _, ip := range entry.AddrIPv4 {
		svc.Addresses = append(svc.Addresses, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		svc.Addresses = append(svc.Addresses, ip.String())
	}
	return svc
}

// txtToAttributes 解析 TXT 记录为键值对
//
// 无 "=" 的条目按布尔属性处理，值为空串；同键的重复条目
// 取首个出现的值。
func txtToAttributes(txt []string) map[string]string {
	if len(txt) == 0 {
		return nil
	}
	attrs := make(map[string]string, len(txt))
	for _, item := range txt {
		if item == "" {
			continue
		}
		key, value, _ := strings.Cut(item, "=")
		if key == "" {
			continue
		}
		if _, ok := attrs[key]; !ok {
			attrs[key] = value
		}
	}
	return attrs
}
