package dnssd

import (
	"strings"

	"github.com/dep2p/go-dnssd/internal/core/mdns"
)

// ════════════════════════════════════════════════════════════════════════════
//                              服务通告
// ════════════════════════════════════════════════════════════════════════════

// NewAnnouncer 创建局域网服务通告器
//
// 在本机发布一个可被其它 Tracker 发现的服务实例：
//
//	announcer, err := dnssd.NewAnnouncer("_ipp._tcp")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer announcer.Shutdown()
//
//	err = announcer.Announce("My Printer", 631, map[string]string{
//	    "path": "/print",
//	})
//
// 同一通告器同一时刻只发布一个实例，撤销后可再次发布。
func NewAnnouncer(serviceType string, opts ...Option) (Announcer, error) {
	if strings.Trim(serviceType, ".") == "" {
		return nil, ErrMissingServiceType
	}

	o := newOptions()
	if err := o.apply(opts); err != nil {
		return nil, err
	}
	return mdns.NewAnnouncer(serviceType, o.domain), nil
}
