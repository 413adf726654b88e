package mdns

import (
	"fmt"
	"net"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/mdns"
	"github.com/miekg/dns"

	"github.com/dep2p/go-dnssd/pkg/interfaces/discovery"
)

// ============================================================================
//                              通告器
// ============================================================================

// Announcer mDNS 服务通告器
//
// 同一通告器同一时刻只发布一个实例；撤销后可再次发布。
type Announcer struct {
	serviceType string
	domain      string

	mu     sync.Mutex
	server *mdns.Server
}

var _ discovery.Announcer = (*Announcer)(nil)

// NewAnnouncer 创建通告器
func NewAnnouncer(serviceType, domain string) *Announcer {
	if domain == "" {
		domain = "local"
	}
	return &Announcer{
		serviceType: serviceType,
		domain:      domain,
	}
}

// Announce 实现 discovery.Announcer
func (a *Announcer) Announce(instance string, port int, txt map[string]string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		return ErrAnnounceActive
	}

	ips, err := ownIPs()
	if err != nil {
		return fmt.Errorf("获取本地地址失败: %w", err)
	}
	if len(ips) == 0 {
		return ErrNoAddresses
	}

	zone, err := mdns.NewMDNSService(
		instance,
		a.serviceType,
		dns.Fqdn(a.domain),
		"",
		port,
		ips,
		attributesToTXT(txt),
	)
	if err != nil {
		return fmt.Errorf("创建 mDNS 服务失败: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: zone})
	if err != nil {
		return fmt.Errorf("创建 mDNS 服务器失败: %w", err)
	}

	a.server = server
	log.Info("服务通告已发布",
		"instance", instance,
		"service", a.serviceType,
		"domain", a.domain,
		"port", port)
	return nil
}

// Shutdown 实现 discovery.Announcer
func (a *Announcer) Shutdown() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server == nil {
		return nil
	}
	err := a.server.Shutdown()
	a.server = nil
	log.Info("服务通告已撤销", "service", a.serviceType)
	return err
}

// ownIPs 收集可发布的本机单播地址
//
// 跳过回环与链路本地地址，IPv4 排在 IPv6 之前。
func ownIPs() ([]net.IP, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil, err
	}

	var v4, v6 []net.IP
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		ip := ipNet.IP
		if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
			continue
		}
		if ip.To4() != nil {
			v4 = append(v4, ip)
		} else {
			v6 = append(v6, ip)
		}
	}
	return append(v4, v6...), nil
}

// attributesToTXT 把键值对转为 TXT 记录，键序稳定
//
// 空值按布尔属性处理，只发布键本身。
func attributesToTXT(attrs map[string]string) []string {
	if len(attrs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	txt := make([]string, 0, len(keys))
	for _, key := range keys {
		if strings.Contains(key, "=") {
			continue // TXT 键不允许包含 "="
		}
		value := attrs[key]
		if value == "" {
			txt = append(txt, key)
			continue
		}
		txt = append(txt, key+"="+value)
	}
	return txt
}
