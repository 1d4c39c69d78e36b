// Observable implementation for rxcore
// Observable核心实现与基础的单上游操作符
package rxcore

import (
	"sync"
	"sync/atomic"
)

// ============================================================================
// Observable 核心实现
// ============================================================================

// observableImpl Observable的核心实现。
// subscribe负责完整履行协议：恰好一次OnSubscribe、
// 任意次OnNext、至多一次终止回调，并返回本次订阅的Disposable
type observableImpl struct {
	subscribe func(observer Observer) Disposable
	config    *Config
}

// NewObservable 从订阅函数创建Observable
func NewObservable(subscribe func(observer Observer) Disposable, options ...Option) Observable {
	config := DefaultConfig()
	for _, opt := range options {
		opt.Apply(config)
	}

	return &observableImpl{
		subscribe: subscribe,
		config:    config,
	}
}

// Subscribe 订阅观察者
func (o *observableImpl) Subscribe(observer Observer) Disposable {
	return o.subscribe(observer)
}

// SubscribeWith 使用回调函数订阅
func (o *observableImpl) SubscribeWith(onNext OnNext, onError OnError, onComplete OnComplete) Disposable {
	return o.Subscribe(NewObserver(onNext, onError, onComplete))
}

// ============================================================================
// 转换操作符
// ============================================================================

// forwardObserver 单上游操作符的基础观察者：
// 把上游的订阅句柄原样转交下游，终止转发恰好一次
type forwardObserver struct {
	downstream Observer
	upstream   Disposable
	done       int32
}

// OnSubscribe 记录上游句柄并转交下游
func (f *forwardObserver) OnSubscribe(d Disposable) {
	f.upstream = d
	f.downstream.OnSubscribe(d)
}

// OnError 错误终止转发
func (f *forwardObserver) OnError(err error) {
	if atomic.CompareAndSwapInt32(&f.done, 0, 1) {
		f.downstream.OnError(err)
	}
}

// OnComplete 完成终止转发
func (f *forwardObserver) OnComplete() {
	if atomic.CompareAndSwapInt32(&f.done, 0, 1) {
		f.downstream.OnComplete()
	}
}

// fail 操作符自身失败：切断上游并向下游发错误
func (f *forwardObserver) fail(err error) {
	if atomic.CompareAndSwapInt32(&f.done, 0, 1) {
		if f.upstream != nil {
			f.upstream.Dispose()
		}
		f.downstream.OnError(err)
	}
}

// isDone 是否已终止
func (f *forwardObserver) isDone() bool {
	return atomic.LoadInt32(&f.done) == 1
}

// mapObserver Map操作符的观察者
type mapObserver struct {
	forwardObserver
	transformer Transformer
}

// OnNext 应用转换函数，失败转为下游错误
func (m *mapObserver) OnNext(value interface{}) {
	if m.isDone() {
		return
	}

	result, err := SafeCall(func() (interface{}, error) {
		return m.transformer(value)
	})
	if err != nil {
		m.fail(err)
		return
	}
	m.downstream.OnNext(result)
}

// Map 转换操作符
func (o *observableImpl) Map(transformer Transformer) Observable {
	return NewObservable(func(observer Observer) Disposable {
		return o.Subscribe(&mapObserver{
			forwardObserver: forwardObserver{downstream: observer},
			transformer:     transformer,
		})
	})
}

// filterObserver Filter操作符的观察者
type filterObserver struct {
	forwardObserver
	predicate Predicate
}

// OnNext 只转发谓词为真的值
func (f *filterObserver) OnNext(value interface{}) {
	if f.isDone() {
		return
	}
	if f.predicate(value) {
		f.downstream.OnNext(value)
	}
}

// Filter 过滤操作符
func (o *observableImpl) Filter(predicate Predicate) Observable {
	return NewObservable(func(observer Observer) Disposable {
		return o.Subscribe(&filterObserver{
			forwardObserver: forwardObserver{downstream: observer},
			predicate:       predicate,
		})
	})
}

// takeObserver Take操作符的观察者
type takeObserver struct {
	forwardObserver
	remaining int32
}

// OnNext 转发前N个值，取满后补发完成并切断上游
func (t *takeObserver) OnNext(value interface{}) {
	if t.isDone() {
		return
	}

	left := atomic.AddInt32(&t.remaining, -1)
	if left < 0 {
		return
	}

	t.downstream.OnNext(value)

	if left == 0 && atomic.CompareAndSwapInt32(&t.done, 0, 1) {
		if t.upstream != nil {
			t.upstream.Dispose()
		}
		t.downstream.OnComplete()
	}
}

// Take 取前N个元素
func (o *observableImpl) Take(count int) Observable {
	if count <= 0 {
		return Empty()
	}

	return NewObservable(func(observer Observer) Disposable {
		return o.Subscribe(&takeObserver{
			forwardObserver: forwardObserver{downstream: observer},
			remaining:       int32(count),
		})
	})
}

// ============================================================================
// 调度操作符
// ============================================================================

// SubscribeOn 指定订阅动作发生的执行环境
func (o *observableImpl) SubscribeOn(scheduler Scheduler) Observable {
	return NewObservable(func(observer Observer) Disposable {
		resources := NewCompositeDisposable()
		observer.OnSubscribe(resources)

		task := scheduler.Schedule(func() {
			resources.Add(o.Subscribe(&detachObserver{downstream: observer, resources: resources}))
		})
		resources.Add(task)

		return resources
	})
}

// detachObserver 吞掉内层OnSubscribe的观察者：
// 下游已经拿到了外层句柄，内层句柄并入资源组即可
type detachObserver struct {
	downstream Observer
	resources  *CompositeDisposable
}

// OnSubscribe 内层订阅句柄并入外层资源组
func (d *detachObserver) OnSubscribe(disposable Disposable) {
	d.resources.Add(disposable)
}

// OnNext 转发值
func (d *detachObserver) OnNext(value interface{}) {
	d.downstream.OnNext(value)
}

// OnError 转发错误
func (d *detachObserver) OnError(err error) {
	d.downstream.OnError(err)
}

// OnComplete 转发完成
func (d *detachObserver) OnComplete() {
	d.downstream.OnComplete()
}

// ObserveOn 指定下游回调发生的执行环境。
// 事件先入队，再按批次调度有界的泵任务顺序交付，保持总顺序不变；
// 泵任务排空队列即返回，调度器内联执行（立即调度器、蹦床）时
// 订阅建立和事件提交都不会被无限期阻塞。
// 订阅终止或释放后入队停止，在途批次由发射器门控丢弃
func (o *observableImpl) ObserveOn(scheduler Scheduler) Observable {
	return NewObservable(func(observer Observer) Disposable {
		em := subscribeEmitter(observer)

		p := &observeOnPump{
			scheduler: scheduler,
			emitter:   em,
			queue:     make([]event, 0, o.config.BufferSize),
		}

		upstream := o.Subscribe(NewObserver(
			func(value interface{}) { p.accept(nextEvent(0, value)) },
			func(err error) { p.accept(errorEvent(err)) },
			func() { p.accept(completeEvent(0)) },
		))
		em.AddResource(upstream)

		return em
	}, WithBufferSize(o.config.BufferSize))
}

// observeOnPump ObserveOn的交付泵。
// 与事件串行化器同样的所有权交接：进行中计数从0加到1的提交
// 负责调度一个drain批次，批次按入队计数递减归零后释放所有权，
// 因此任一时刻至多一个drain任务在调度器上执行，交付顺序即入队顺序
type observeOnPump struct {
	scheduler Scheduler
	emitter   *emitterImpl
	mu        sync.Mutex
	queue     []event
	wip       int32
}

// accept 入队一个事件，必要时调度drain批次
func (p *observeOnPump) accept(ev event) {
	if p.emitter.IsDisposed() {
		return
	}

	p.mu.Lock()
	p.queue = append(p.queue, ev)
	p.mu.Unlock()

	if atomic.AddInt32(&p.wip, 1) != 1 {
		return
	}

	p.scheduler.Schedule(p.drain)
}

// drain 排空队列并向下游交付，队列排空且计数归零即返回
func (p *observeOnPump) drain() {
	missed := int32(1)
	for {
		for {
			p.mu.Lock()
			if len(p.queue) == 0 {
				p.mu.Unlock()
				break
			}
			ev := p.queue[0]
			p.queue = p.queue[1:]
			p.mu.Unlock()

			switch ev.kind {
			case eventNext:
				p.emitter.Next(ev.value)
			case eventError:
				p.emitter.Error(ev.err)
			case eventComplete:
				p.emitter.Complete()
			}
		}

		missed = atomic.AddInt32(&p.wip, -missed)
		if missed == 0 {
			return
		}
	}
}
