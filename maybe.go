// Maybe implementation for rxcore
// 可能为空的单值源：发射0个或1个值后终止
package rxcore

import (
	"sync/atomic"
)

// ============================================================================
// Maybe 接口
// ============================================================================

// MaybeObserver Maybe的观察者协议：恰好一次OnSubscribe，
// 之后恰好一次OnSuccess、OnComplete或OnError
type MaybeObserver interface {
	// OnSubscribe 订阅建立时回调
	OnSubscribe(d Disposable)

	// OnSuccess 接收唯一的值并终止
	OnSuccess(value interface{})

	// OnError 接收错误并终止
	OnError(err error)

	// OnComplete 空完成，没有值
	OnComplete()
}

// Maybe 发射0个或1个值的源
type Maybe interface {
	// Subscribe 订阅观察者，返回本次订阅的Disposable
	Subscribe(observer MaybeObserver) Disposable

	// SubscribeWith 使用回调函数订阅
	SubscribeWith(onSuccess func(value interface{}), onError OnError, onComplete OnComplete) Disposable

	// Map 转换操作符
	Map(transformer Transformer) Maybe

	// Filter 过滤，不满足谓词时空完成
	Filter(predicate Predicate) Maybe

	// DefaultIfEmpty 空完成时改为发射默认值
	DefaultIfEmpty(defaultValue interface{}) Maybe

	// ToObservable 转换为Observable：成功值变为一次Next加完成
	ToObservable() Observable
}

// ============================================================================
// Maybe 实现
// ============================================================================

// maybeImpl Maybe的核心实现
type maybeImpl struct {
	subscribe func(observer MaybeObserver) Disposable
}

// NewMaybe 从订阅函数创建Maybe
func NewMaybe(subscribe func(observer MaybeObserver) Disposable) Maybe {
	return &maybeImpl{
		subscribe: subscribe,
	}
}

// Subscribe 订阅观察者
func (m *maybeImpl) Subscribe(observer MaybeObserver) Disposable {
	return m.subscribe(observer)
}

// SubscribeWith 使用回调函数订阅
func (m *maybeImpl) SubscribeWith(onSuccess func(value interface{}), onError OnError, onComplete OnComplete) Disposable {
	return m.Subscribe(&callbackMaybeObserver{
		onSuccess:  onSuccess,
		onError:    onError,
		onComplete: onComplete,
	})
}

// callbackMaybeObserver 回调适配的Maybe观察者
type callbackMaybeObserver struct {
	onSuccess  func(value interface{})
	onError    OnError
	onComplete OnComplete
}

// OnSubscribe 订阅句柄由Subscribe返回值管理
func (c *callbackMaybeObserver) OnSubscribe(d Disposable) {}

// OnSuccess 接收唯一的值
func (c *callbackMaybeObserver) OnSuccess(value interface{}) {
	if c.onSuccess != nil {
		c.onSuccess(value)
	}
}

// OnError 接收错误
func (c *callbackMaybeObserver) OnError(err error) {
	if c.onError != nil {
		c.onError(err)
	}
}

// OnComplete 空完成
func (c *callbackMaybeObserver) OnComplete() {
	if c.onComplete != nil {
		c.onComplete()
	}
}

// ============================================================================
// Maybe 工厂函数
// ============================================================================

// maybeEmit 履行Maybe协议的辅助：OnSubscribe后至多一次终止
type maybeEmit struct {
	observer MaybeObserver
	active   int32
}

// subscribeMaybeEmit 创建发射辅助并送出OnSubscribe
func subscribeMaybeEmit(observer MaybeObserver) *maybeEmit {
	e := &maybeEmit{observer: observer, active: 1}
	observer.OnSubscribe(e)
	return e
}

// Dispose 取消订阅
func (e *maybeEmit) Dispose() {
	atomic.StoreInt32(&e.active, 0)
}

// IsDisposed 是否已终止或释放
func (e *maybeEmit) IsDisposed() bool {
	return atomic.LoadInt32(&e.active) == 0
}

// success 发射唯一的值
func (e *maybeEmit) success(value interface{}) {
	if atomic.CompareAndSwapInt32(&e.active, 1, 0) {
		e.observer.OnSuccess(value)
	}
}

// complete 空完成
func (e *maybeEmit) complete() {
	if atomic.CompareAndSwapInt32(&e.active, 1, 0) {
		e.observer.OnComplete()
	}
}

// fail 发射错误
func (e *maybeEmit) fail(err error) {
	if atomic.CompareAndSwapInt32(&e.active, 1, 0) {
		e.observer.OnError(err)
	}
}

// MaybeJust 发射单个值的Maybe
func MaybeJust(value interface{}) Maybe {
	return NewMaybe(func(observer MaybeObserver) Disposable {
		e := subscribeMaybeEmit(observer)
		e.success(value)
		return e
	})
}

// MaybeEmpty 空完成的Maybe
func MaybeEmpty() Maybe {
	return NewMaybe(func(observer MaybeObserver) Disposable {
		e := subscribeMaybeEmit(observer)
		e.complete()
		return e
	})
}

// MaybeError 立即报错的Maybe
func MaybeError(err error) Maybe {
	return NewMaybe(func(observer MaybeObserver) Disposable {
		e := subscribeMaybeEmit(observer)
		e.fail(err)
		return e
	})
}

// ============================================================================
// Maybe 操作符
// ============================================================================

// Map 转换操作符
func (m *maybeImpl) Map(transformer Transformer) Maybe {
	return NewMaybe(func(observer MaybeObserver) Disposable {
		return m.Subscribe(&maybeMapObserver{downstream: observer, transformer: transformer})
	})
}

// maybeMapObserver Map的观察者
type maybeMapObserver struct {
	downstream  MaybeObserver
	transformer Transformer
}

// OnSubscribe 上游句柄转交下游
func (o *maybeMapObserver) OnSubscribe(d Disposable) { o.downstream.OnSubscribe(d) }

// OnSuccess 应用转换，失败转为下游错误
func (o *maybeMapObserver) OnSuccess(value interface{}) {
	result, err := SafeCall(func() (interface{}, error) {
		return o.transformer(value)
	})
	if err != nil {
		o.downstream.OnError(err)
		return
	}
	o.downstream.OnSuccess(result)
}

// OnError 转发错误
func (o *maybeMapObserver) OnError(err error) { o.downstream.OnError(err) }

// OnComplete 转发空完成
func (o *maybeMapObserver) OnComplete() { o.downstream.OnComplete() }

// Filter 过滤，不满足谓词时空完成
func (m *maybeImpl) Filter(predicate Predicate) Maybe {
	return NewMaybe(func(observer MaybeObserver) Disposable {
		return m.Subscribe(&maybeFilterObserver{downstream: observer, predicate: predicate})
	})
}

// maybeFilterObserver Filter的观察者
type maybeFilterObserver struct {
	downstream MaybeObserver
	predicate  Predicate
}

// OnSubscribe 上游句柄转交下游
func (o *maybeFilterObserver) OnSubscribe(d Disposable) { o.downstream.OnSubscribe(d) }

// OnSuccess 满足谓词则成功，否则空完成
func (o *maybeFilterObserver) OnSuccess(value interface{}) {
	if o.predicate(value) {
		o.downstream.OnSuccess(value)
	} else {
		o.downstream.OnComplete()
	}
}

// OnError 转发错误
func (o *maybeFilterObserver) OnError(err error) { o.downstream.OnError(err) }

// OnComplete 转发空完成
func (o *maybeFilterObserver) OnComplete() { o.downstream.OnComplete() }

// DefaultIfEmpty 空完成时改为发射默认值
func (m *maybeImpl) DefaultIfEmpty(defaultValue interface{}) Maybe {
	return NewMaybe(func(observer MaybeObserver) Disposable {
		return m.Subscribe(&maybeDefaultObserver{downstream: observer, defaultValue: defaultValue})
	})
}

// maybeDefaultObserver DefaultIfEmpty的观察者
type maybeDefaultObserver struct {
	downstream   MaybeObserver
	defaultValue interface{}
}

// OnSubscribe 上游句柄转交下游
func (o *maybeDefaultObserver) OnSubscribe(d Disposable) { o.downstream.OnSubscribe(d) }

// OnSuccess 转发成功值
func (o *maybeDefaultObserver) OnSuccess(value interface{}) { o.downstream.OnSuccess(value) }

// OnError 转发错误
func (o *maybeDefaultObserver) OnError(err error) { o.downstream.OnError(err) }

// OnComplete 空完成替换为默认值
func (o *maybeDefaultObserver) OnComplete() { o.downstream.OnSuccess(o.defaultValue) }

// ToObservable 转换为Observable
func (m *maybeImpl) ToObservable() Observable {
	return NewObservable(func(observer Observer) Disposable {
		em := subscribeEmitter(observer)

		upstream := m.Subscribe(&maybeBridgeObserver{emitter: em})
		em.AddResource(upstream)

		return em
	})
}

// maybeBridgeObserver Maybe到Observable的桥接观察者
type maybeBridgeObserver struct {
	emitter *emitterImpl
}

// OnSubscribe 上游句柄并入发射器资源
func (o *maybeBridgeObserver) OnSubscribe(d Disposable) { o.emitter.AddResource(d) }

// OnSuccess 成功值变为一次Next加完成
func (o *maybeBridgeObserver) OnSuccess(value interface{}) {
	o.emitter.Next(value)
	o.emitter.Complete()
}

// OnError 转发错误
func (o *maybeBridgeObserver) OnError(err error) { o.emitter.Error(err) }

// OnComplete 转发空完成
func (o *maybeBridgeObserver) OnComplete() { o.emitter.Complete() }
