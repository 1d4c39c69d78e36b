// Test doubles for rxcore
// 测试替身：可脚本化的源与线程安全的回调顺序记录器
package rxcore

import (
	"fmt"
	"sync"
)

// ============================================================================
// 可脚本化的Observable测试替身
// ============================================================================

// TestObservable 由测试手工驱动的源，用于确定性地编排竞争场景。
// Next/Complete/Error可以从任意goroutine调用，
// 发射遵守观察者协议门控（终止或释放后不再投递）
type TestObservable struct {
	mu       sync.Mutex
	emitters []*emitterImpl
}

// NewTestObservable 创建可脚本化的源
func NewTestObservable() *TestObservable {
	return &TestObservable{}
}

// Observable 返回可订阅的Observable视图
func (t *TestObservable) Observable() Observable {
	return NewObservable(func(observer Observer) Disposable {
		em := subscribeEmitter(observer)
		t.mu.Lock()
		t.emitters = append(t.emitters, em)
		t.mu.Unlock()
		return em
	})
}

// snapshot 当前全部订阅的发射器
func (t *TestObservable) snapshot() []*emitterImpl {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*emitterImpl(nil), t.emitters...)
}

// Next 向所有订阅者发射一个值
func (t *TestObservable) Next(value interface{}) {
	for _, em := range t.snapshot() {
		em.Next(value)
	}
}

// Complete 向所有订阅者发射完成
func (t *TestObservable) Complete() {
	for _, em := range t.snapshot() {
		em.Complete()
	}
}

// Error 向所有订阅者发射错误
func (t *TestObservable) Error(err error) {
	for _, em := range t.snapshot() {
		em.Error(err)
	}
}

// SubscriberCount 订阅次数
func (t *TestObservable) SubscriberCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.emitters)
}

// Disposed 是否全部订阅都已结束（至少有过一次订阅）
func (t *TestObservable) Disposed() bool {
	emitters := t.snapshot()
	if len(emitters) == 0 {
		return false
	}
	for _, em := range emitters {
		if !em.IsDisposed() {
			return false
		}
	}
	return true
}

// ============================================================================
// 可脚本化的Maybe测试替身
// ============================================================================

// TestMaybe 由测试手工驱动的Maybe源
type TestMaybe struct {
	mu       sync.Mutex
	emitters []*maybeEmit
}

// NewTestMaybe 创建可脚本化的Maybe
func NewTestMaybe() *TestMaybe {
	return &TestMaybe{}
}

// Maybe 返回可订阅的Maybe视图
func (t *TestMaybe) Maybe() Maybe {
	return NewMaybe(func(observer MaybeObserver) Disposable {
		e := subscribeMaybeEmit(observer)
		t.mu.Lock()
		t.emitters = append(t.emitters, e)
		t.mu.Unlock()
		return e
	})
}

// snapshot 当前全部订阅的发射辅助
func (t *TestMaybe) snapshot() []*maybeEmit {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*maybeEmit(nil), t.emitters...)
}

// Success 向所有订阅者发射唯一的值
func (t *TestMaybe) Success(value interface{}) {
	for _, e := range t.snapshot() {
		e.success(value)
	}
}

// Complete 向所有订阅者发射空完成
func (t *TestMaybe) Complete() {
	for _, e := range t.snapshot() {
		e.complete()
	}
}

// Error 向所有订阅者发射错误
func (t *TestMaybe) Error(err error) {
	for _, e := range t.snapshot() {
		e.fail(err)
	}
}

// ============================================================================
// 线程安全的顺序记录器
// ============================================================================

// ConcurrentList 线程安全的只追加列表，用于断言回调交错顺序
type ConcurrentList struct {
	mu    sync.Mutex
	items []interface{}
}

// NewConcurrentList 创建记录列表
func NewConcurrentList() *ConcurrentList {
	return &ConcurrentList{}
}

// Append 追加一项
func (l *ConcurrentList) Append(item interface{}) {
	l.mu.Lock()
	l.items = append(l.items, item)
	l.mu.Unlock()
}

// Snapshot 当前内容的拷贝
func (l *ConcurrentList) Snapshot() []interface{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]interface{}(nil), l.items...)
}

// Strings 当前内容的字符串拷贝
func (l *ConcurrentList) Strings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.items))
	for i, item := range l.items {
		out[i] = fmt.Sprintf("%v", item)
	}
	return out
}

// Len 当前长度
func (l *ConcurrentList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// ============================================================================
// 记录观察者
// ============================================================================

// recordingObserver 把全部回调按顺序记入列表，终止时关闭done
type recordingObserver struct {
	events *ConcurrentList
	done   chan struct{}
}

// newRecordingObserver 创建记录观察者
func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		events: NewConcurrentList(),
		done:   make(chan struct{}),
	}
}

// OnSubscribe 记录订阅建立
func (r *recordingObserver) OnSubscribe(d Disposable) {
	r.events.Append("subscribe")
}

// OnNext 记录值
func (r *recordingObserver) OnNext(value interface{}) {
	r.events.Append(fmt.Sprintf("next:%v", value))
}

// OnError 记录错误并标记终止
func (r *recordingObserver) OnError(err error) {
	r.events.Append(fmt.Sprintf("error:%v", err))
	close(r.done)
}

// OnComplete 记录完成并标记终止
func (r *recordingObserver) OnComplete() {
	r.events.Append("complete")
	close(r.done)
}
