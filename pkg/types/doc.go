// Package types 定义 go-dnssd 的公共数据结构
//
// 这是整个模块的最底层包，不依赖任何其他 go-dnssd 内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 职能
//
// pkg/types 的职能是定义 Go 内部数据结构：
//   - 模块间数据传递
//   - API 参数/返回值
//   - 事件类型、统计快照
//
// # 文件组织
//
// 基础类型:
//   - service.go - Service 服务记录、服务键派生与拆分
//   - enums.go   - DiscoveryState, ErrorCode
//   - stats.go   - DiscoveryStats 统计快照
//
// 事件类型:
//   - events.go  - 生命周期与服务变更事件
//
// # 类型分类
//
// 服务记录:
//   - Service - 一条 DNS-SD 服务记录（实例名、类型、主机、端口、TXT 属性）
//
// 枚举类型:
//   - DiscoveryState - 发现生命周期状态（Stopped/Starting/Started/Stopping）
//   - ErrorCode      - 回调错误码（Internal/Timeout/BadName/Network/Busy）
//
// 事件类型 (EvtXXX):
//   - EvtDiscoveryStarted / EvtDiscoveryStopped - 生命周期确认
//   - EvtServiceFound / EvtServiceLost          - 服务出现与消失
//   - EvtServiceResolved / EvtResolveFailed     - 解析结果
//
// # 设计原则
//
//  1. 不可变性：类型创建后尽量不可修改，使用值类型
//  2. 可比较性：Service 以 Key() 作为 map key
//  3. 零依赖：不依赖任何其他 go-dnssd 内部包（最底层）
//
// # 使用示例
//
//	import "github.com/dep2p/go-dnssd/pkg/types"
//
//	// 由实例名、服务类型和域派生服务键
//	key := types.ServiceKey("printer", "_ipp._tcp", "local")
//
//	// 拆分服务键
//	instance, serviceType, domain, err := types.SplitServiceKey(key)
//
//	// 解析完整服务名中的实例名
//	name := types.ParseInstanceName("printer._ipp._tcp.local")
package types
