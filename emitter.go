// Downstream emitter for rxcore
// 下游发射器：在每个交付点检查自身状态，保证终止或释放之后不再有回调
package rxcore

import (
	"sync/atomic"
)

// ============================================================================
// Emitter 发射器
// ============================================================================

// Emitter 面向生产者的发射接口。
// 发射器本身就是交给下游OnSubscribe的Disposable：
// 下游取消订阅后，Next/Error/Complete全部变成无操作，
// 这正是取消与在途drain循环竞争时的唯一防线
type Emitter interface {
	Disposable

	// Next 向下游发射一个值，已终止或已释放时丢弃
	Next(value interface{})

	// Error 向下游发射错误并终止，至多生效一次
	Error(err error)

	// Complete 向下游发射完成并终止，至多生效一次
	Complete()

	// AddResource 登记随本次订阅一起释放的上游资源
	AddResource(d Disposable)
}

// emitterImpl 发射器实现。
// active是每个订阅唯一的状态标志，所有重入回调图
// （源→组合器→下游→同步Dispose→回到源）都以它为准，
// 而不依赖调用栈结构防止重入错误
type emitterImpl struct {
	observer  Observer
	active    int32
	resources *CompositeDisposable
}

// newEmitter 为一次订阅创建发射器，尚未调用下游的OnSubscribe
func newEmitter(observer Observer) *emitterImpl {
	return &emitterImpl{
		observer:  observer,
		active:    1,
		resources: NewCompositeDisposable(),
	}
}

// subscribeEmitter 创建发射器并向下游送出OnSubscribe，
// 源实现里的标准开场白
func subscribeEmitter(observer Observer) *emitterImpl {
	em := newEmitter(observer)
	observer.OnSubscribe(em)
	return em
}

// Next 发射一个值
func (e *emitterImpl) Next(value interface{}) {
	if atomic.LoadInt32(&e.active) == 1 {
		e.observer.OnNext(value)
	}
}

// Error 发射错误并终止
func (e *emitterImpl) Error(err error) {
	if atomic.CompareAndSwapInt32(&e.active, 1, 0) {
		e.observer.OnError(err)
		e.resources.Dispose()
	}
}

// Complete 发射完成并终止
func (e *emitterImpl) Complete() {
	if atomic.CompareAndSwapInt32(&e.active, 1, 0) {
		e.observer.OnComplete()
		e.resources.Dispose()
	}
}

// Dispose 取消订阅：之后不再有任何下游交付，上游资源级联释放
func (e *emitterImpl) Dispose() {
	if atomic.CompareAndSwapInt32(&e.active, 1, 0) {
		e.resources.Dispose()
	}
}

// IsDisposed 是否已终止或已释放
func (e *emitterImpl) IsDisposed() bool {
	return atomic.LoadInt32(&e.active) == 0
}

// AddResource 登记上游资源，订阅已结束时立即释放
func (e *emitterImpl) AddResource(d Disposable) {
	e.resources.Add(d)
}
