// Package coordinator 实现发现与解析之间的协调器
//
// 协调器位于平台浏览器（Browser）与业务监听器（Listener）之间，
// 把平台零散、抖动、乱序的回调整理成一致的服务视图。
//
// # 核心功能
//
// 1. 抖动吸收 - 去抖集合延迟移除
//   - 服务消失后先挂起，窗口内重现则撤销移除
//   - 只有窗口到期仍未重现才确认丢失
//   - 窗口为 0 时退化为立即移除
//
// 2. 串行解析 - 单工作协程按序解析
//   - 发现的服务进入解析队列，键去重
//   - 同一时刻至多一个解析在途
//   - 结果过期（会话已切换）则静默丢弃
//
// 3. 合并投递 - 事件经单一投递协程交给监听器
//   - 一次调度周期内的多个事件合并为一次唤醒
//   - 监听器回调串行执行，互不并发
//
// 4. 生命周期收敛 - 期望态与平台确认分离
//   - Start/Stop 只翻转期望态，同一时刻至多一条平台命令在途
//   - 平台确认到达时与期望态比对，不一致则下发反向命令
//   - 命令失败时期望态回退到平台实际状态，调用方可重试
//
// # 会话纪元
//
// 每次 Stop 递增会话纪元并清空全部运行状态。服务事件在入队时
// 盖上当时的纪元，投递时纪元不再匹配的事件被丢弃，保证停止后
// 不会泄露上一会话的回调。生命周期事件不受纪元门控。
package coordinator
