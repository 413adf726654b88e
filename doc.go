// Package dnssd 提供抗抖动的局域网服务发现
//
// go-dnssd 在 mDNS/DNS-SD 浏览之上加了一层协调器，把平台层
// 嘈杂、乱序、随时可能失败的回调，整理成一条干净的事件流。
//
// # 核心概念
//
// 包围绕三个核心概念构建：
//
//   - Tracker: 服务追踪器，用户交互的主入口
//   - Listener: 业务监听器，顺序接收发现事件
//   - Service: 服务记录，解析后携带主机、端口、地址与 TXT
//
// # 快速开始
//
//	import "github.com/dep2p/go-dnssd"
//
//	// 1. 创建追踪器
//	tracker, err := dnssd.New("_ipp._tcp", dnssd.ListenerFuncs{
//	    ServiceResolved: func(svc dnssd.Service) {
//	        fmt.Println("resolved:", svc)
//	    },
//	    ServiceLost: func(svc dnssd.Service) {
//	        fmt.Println("lost:", svc.Name)
//	    },
//	}, dnssd.WithDebounce(2*time.Second))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tracker.Close()
//
//	// 2. 启动浏览
//	if err := tracker.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
//	// 3. 随时读取当前服务表
//	for _, svc := range tracker.Services() {
//	    fmt.Println(svc.Name, svc.Host, svc.Port)
//	}
//
// # 事件管线
//
//	┌──────────────────────────────────────────────────────────────┐
//	│  平台层                                                       │
//	│  ┌─────────┐              ┌──────────┐      ┌───────────┐    │
//	│  │ Browser │              │ Resolver │      │ Announcer │    │
//	│  └────┬────┘              └────┬─────┘      └───────────┘    │
//	│       │ found/lost             │ resolve                     │
//	├───────┼────────────────────────┼─────────────────────────────┤
//	│  协调层                        │                              │
//	│  ┌────▼─────┐   ┌─────────┐   ┌▼────────┐                    │
//	│  │ 去抖窗口  │──▶│ 解析队列 │──▶│ 串行工作 │                    │
//	│  └──────────┘   └─────────┘   └────┬────┘                    │
//	│                                    │                         │
//	│                              ┌─────▼─────┐                   │
//	│                              │ 合并投递器 │                   │
//	├──────────────────────────────┴─────┬─────┴───────────────────┤
//	│  业务层                            │                          │
//	│                              ┌─────▼────┐                    │
//	│                              │ Listener │                    │
//	│                              └──────────┘                    │
//	└──────────────────────────────────────────────────────────────┘
//
// 协调层提供四项保证：
//
//  1. 抖动吸收: 去抖窗口内先消失又重现的服务不产生 lost 事件
//  2. 串行解析: 同一时刻至多一个解析在进行，新发现排队等待
//  3. 合并投递: 所有回调在单一 goroutine 上顺序执行，互不并发
//  4. 生命周期收敛: Start/Stop 允许任意交错，状态最终收敛到
//     最后一次调用表达的期望
//
// # 文件组织
//
//	go-dnssd/
//	├── dnssd.go              # 版本信息、类型别名
//	├── tracker.go            # Tracker 门面
//	├── announce.go           # 服务通告门面
//	├── options.go            # WithXxx 配置选项
//	├── errors.go             # 错误定义
//	│
//	├── config/               # JSON 配置加载
//	├── internal/core/
//	│   ├── coordinator/      # 发现协调器（去抖、队列、投递、生命周期）
//	│   ├── debounce/         # 延迟删除映射
//	│   ├── resolvequeue/     # 键去重的 FIFO 队列
//	│   ├── dispatch/         # 单 goroutine 合并投递器
//	│   ├── metrics/          # 运行统计计数
//	│   └── mdns/             # mDNS 平台适配（浏览/解析/通告）
//	└── pkg/
//	    ├── types/            # 公共类型（Service、事件、错误码）
//	    └── interfaces/       # 公共接口（Browser、Resolver、Listener）
//
// # 平台适配
//
// 默认平台层基于组播 DNS：浏览用周期查询模拟会话，解析走
// 一次性定向查询。需要接入其它发现后端（例如系统级 DNS-SD
// 守护进程）时，用 WithBrowser 与 WithResolver 注入自定义实现。
//
// 更多信息请访问: https://github.com/dep2p/go-dnssd
package dnssd
