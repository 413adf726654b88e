// Package resolvequeue 实现插入有序、键去重的解析队列
//
// 队列收集等待解析的服务键：重复入队是空操作，出队顺序
// 即首次入队顺序。Queue 不做内部加锁，由持有者在自身互斥锁
// 内访问。
package resolvequeue

// Queue 解析队列
type Queue[K comparable] struct {
	order   []K
	pending map[K]struct{}
}

// New 创建空队列
func New[K comparable]() *Queue[K] {
	return &Queue[K]{
		pending: make(map[K]struct{}),
	}
}

// Enqueue 入队，键已在队列中时为空操作
//
// 返回键是否真正入队。
func (q *Queue[K]) Enqueue(key K) bool {
	if _, ok := q.pending[key]; ok {
		return false
	}
	q.pending[key] = struct{}{}
	q.order = append(q.order, key)
	return true
}

// Dequeue 出队最早入队的键
//
// 队列为空时第二个返回值为 false。
func (q *Queue[K]) Dequeue() (K, bool) {
	var zero K
	if len(q.order) == 0 {
		return zero, false
	}
	key := q.order[0]
	q.order[0] = zero // 释放引用
	q.order = q.order[1:]
	delete(q.pending, key)
	return key, true
}

// Remove 撤销排队中的键，保持其余键的顺序
//
// 返回键是否曾在队列中。
func (q *Queue[K]) Remove(key K) bool {
	if _, ok := q.pending[key]; !ok {
		return false
	}
	delete(q.pending, key)
	for i, k := range q.order {
		if k == key {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
	return true
}

// Contains 报告键是否在队列中
func (q *Queue[K]) Contains(key K) bool {
	_, ok := q.pending[key]
	return ok
}

// Len 返回队列长度
func (q *Queue[K]) Len() int {
	return len(q.order)
}

// Clear 清空队列
func (q *Queue[K]) Clear() {
	q.order = nil
	q.pending = make(map[K]struct{})
}
