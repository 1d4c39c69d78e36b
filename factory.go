// Factory functions for rxcore
// 工厂函数：从值、切片、通道等数据源创建Observable
package rxcore

// ============================================================================
// 基础工厂函数
// ============================================================================

// Create 从生产者函数创建Observable。
// 生产者在订阅goroutine上同步执行，通过Emitter发射事件；
// 发射器自带订阅状态门控，生产者应通过IsDisposed感知取消
func Create(producer func(emitter Emitter), options ...Option) Observable {
	return NewObservable(func(observer Observer) Disposable {
		em := subscribeEmitter(observer)
		producer(em)
		return em
	}, options...)
}

// Just 从给定的值创建Observable，异步发射后完成
func Just(values ...interface{}) Observable {
	return FromSlice(values)
}

// FromSlice 从切片创建Observable
func FromSlice(slice []interface{}, options ...Option) Observable {
	config := DefaultConfig()
	for _, opt := range options {
		opt.Apply(config)
	}

	return NewObservable(func(observer Observer) Disposable {
		em := subscribeEmitter(observer)

		go func() {
			for _, value := range slice {
				if em.IsDisposed() {
					return
				}
				select {
				case <-config.Context.Done():
					return
				default:
				}
				em.Next(value)
			}
			em.Complete()
		}()

		return em
	}, options...)
}

// FromChannel 从通道创建Observable，通道关闭即完成
func FromChannel(ch <-chan interface{}, options ...Option) Observable {
	config := DefaultConfig()
	for _, opt := range options {
		opt.Apply(config)
	}

	return NewObservable(func(observer Observer) Disposable {
		em := subscribeEmitter(observer)

		go func() {
			for {
				select {
				case <-config.Context.Done():
					return
				case value, ok := <-ch:
					if !ok {
						em.Complete()
						return
					}
					if em.IsDisposed() {
						return
					}
					em.Next(value)
				}
			}
		}()

		return em
	}, options...)
}

// Range 创建发射[start, start+count)整数序列的Observable
func Range(start, count int, options ...Option) Observable {
	values := make([]interface{}, 0, count)
	for i := 0; i < count; i++ {
		values = append(values, start+i)
	}
	return FromSlice(values, options...)
}

// Empty 创建一个不发射任何值、立即完成的Observable
func Empty() Observable {
	return NewObservable(func(observer Observer) Disposable {
		em := subscribeEmitter(observer)
		em.Complete()
		return em
	})
}

// Never 创建一个永不发射也永不终止的Observable
func Never() Observable {
	return NewObservable(func(observer Observer) Disposable {
		em := subscribeEmitter(observer)
		return em
	})
}

// Error 创建一个立即发射错误的Observable
func Error(err error) Observable {
	return NewObservable(func(observer Observer) Disposable {
		em := subscribeEmitter(observer)
		em.Error(err)
		return em
	})
}
