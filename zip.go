// Zip combinators for rxcore
// Zip组合操作符：订阅N个源，按源声明顺序逐项配对组合
package rxcore

// ============================================================================
// N元Zip通用形式
// ============================================================================

// ZipArray 通用N元Zip。订阅全部源，为每个源维护一个待配对FIFO队列；
// 当所有队列都非空时，按源声明顺序（索引0..N-1）弹出各队头交给zipper，
// 把组合结果发射给下游。
//
// 终止规则：
//   - 任一源报错：立即向下游发错误并停止，不会滞后于已缓冲的值；
//   - 某个源在自身队列为空的时刻完成：立即向下游发完成并停止
//     （该源不会再有值，配对永远无法推进）；
//   - 每次发射后复查：若某个已完成源的队列被取空，同样立即完成；
//   - zipper返回错误或panic：向下游发错误并停止。
//
// 零个源时立即完成，不发射任何值。
//
// 各源的回调可能来自互不相关的goroutine，全部经由串行化器汇聚，
// 队列与完成标记只在串行化器的处理函数内被触碰
func ZipArray(sources []Observable, zipper ZipFunc) Observable {
	return NewObservable(func(observer Observer) Disposable {
		em := subscribeEmitter(observer)

		if len(sources) == 0 {
			em.Complete()
			return em
		}

		upstreams := NewCompositeDisposable()
		em.AddResource(upstreams)

		c := &zipCoordinator{
			emitter:   em,
			zipper:    zipper,
			queues:    make([][]interface{}, len(sources)),
			completed: make([]bool, len(sources)),
		}
		c.serializer = newSerializer(c.handle)

		for i, source := range sources {
			source.Subscribe(&zipSourceObserver{
				coordinator: c,
				upstreams:   upstreams,
				index:       i,
			})
		}

		return em
	})
}

// ============================================================================
// Zip协调器
// ============================================================================

// zipCoordinator Zip的共享状态。
// handle只会在串行化器的drain循环内被互斥地调用，
// 因此queues和completed不需要额外加锁
type zipCoordinator struct {
	emitter    *emitterImpl
	serializer *serializer
	zipper     ZipFunc
	queues     [][]interface{}
	completed  []bool
}

// handle 处理一个汇聚后的事件，返回false让串行化器丢弃后续事件
func (c *zipCoordinator) handle(ev event) bool {
	if c.emitter.IsDisposed() {
		// 下游已取消，在途事件不再有任何效果
		return false
	}

	switch ev.kind {
	case eventError:
		c.emitter.Error(ev.err)
		return false

	case eventComplete:
		c.completed[ev.index] = true
		if len(c.queues[ev.index]) == 0 {
			c.emitter.Complete()
			return false
		}
		return true

	default:
		return c.handleNext(ev.index, ev.value)
	}
}

// handleNext 入队一个值，凑齐一轮配对则组合并发射
func (c *zipCoordinator) handleNext(index int, value interface{}) bool {
	c.queues[index] = append(c.queues[index], value)

	for _, queue := range c.queues {
		if len(queue) == 0 {
			return true
		}
	}

	row := make([]interface{}, len(c.queues))
	for i, queue := range c.queues {
		row[i] = queue[0]
		c.queues[i] = queue[1:]
	}

	result, err := SafeCall(func() (interface{}, error) {
		return c.zipper(row)
	})
	if err != nil {
		c.emitter.Error(err)
		return false
	}

	c.emitter.Next(result)

	// 发射取空了每个队列的队头，某个已完成源的积压耗尽则配对到此为止
	for i, done := range c.completed {
		if done && len(c.queues[i]) == 0 {
			c.emitter.Complete()
			return false
		}
	}
	return true
}

// zipSourceObserver 第index个源的观察者，把回调转成带标签的事件
type zipSourceObserver struct {
	coordinator *zipCoordinator
	upstreams   *CompositeDisposable
	index       int
}

// OnSubscribe 上游订阅句柄并入组合释放器
func (z *zipSourceObserver) OnSubscribe(d Disposable) {
	z.upstreams.Add(d)
}

// OnNext 值事件入列
func (z *zipSourceObserver) OnNext(value interface{}) {
	z.coordinator.serializer.accept(nextEvent(z.index, value))
}

// OnError 错误事件入列，优先终止
func (z *zipSourceObserver) OnError(err error) {
	z.coordinator.serializer.accept(errorEvent(err))
}

// OnComplete 完成事件入列
func (z *zipSourceObserver) OnComplete() {
	z.coordinator.serializer.accept(completeEvent(z.index))
}

// ============================================================================
// 固定元数便捷包装（2..10元）
// ============================================================================

// Zip2 二元Zip
func Zip2(source1, source2 Observable, zipper func(v1, v2 interface{}) (interface{}, error)) Observable {
	return ZipArray([]Observable{source1, source2}, func(values []interface{}) (interface{}, error) {
		return zipper(values[0], values[1])
	})
}

// Zip3 三元Zip
func Zip3(source1, source2, source3 Observable, zipper func(v1, v2, v3 interface{}) (interface{}, error)) Observable {
	return ZipArray([]Observable{source1, source2, source3}, func(values []interface{}) (interface{}, error) {
		return zipper(values[0], values[1], values[2])
	})
}

// Zip4 四元Zip
func Zip4(source1, source2, source3, source4 Observable, zipper func(v1, v2, v3, v4 interface{}) (interface{}, error)) Observable {
	return ZipArray([]Observable{source1, source2, source3, source4}, func(values []interface{}) (interface{}, error) {
		return zipper(values[0], values[1], values[2], values[3])
	})
}

// Zip5 五元Zip
func Zip5(source1, source2, source3, source4, source5 Observable, zipper func(v1, v2, v3, v4, v5 interface{}) (interface{}, error)) Observable {
	return ZipArray([]Observable{source1, source2, source3, source4, source5}, func(values []interface{}) (interface{}, error) {
		return zipper(values[0], values[1], values[2], values[3], values[4])
	})
}

// Zip6 六元Zip
func Zip6(source1, source2, source3, source4, source5, source6 Observable, zipper func(v1, v2, v3, v4, v5, v6 interface{}) (interface{}, error)) Observable {
	return ZipArray([]Observable{source1, source2, source3, source4, source5, source6}, func(values []interface{}) (interface{}, error) {
		return zipper(values[0], values[1], values[2], values[3], values[4], values[5])
	})
}

// Zip7 七元Zip
func Zip7(source1, source2, source3, source4, source5, source6, source7 Observable, zipper func(v1, v2, v3, v4, v5, v6, v7 interface{}) (interface{}, error)) Observable {
	return ZipArray([]Observable{source1, source2, source3, source4, source5, source6, source7}, func(values []interface{}) (interface{}, error) {
		return zipper(values[0], values[1], values[2], values[3], values[4], values[5], values[6])
	})
}

// Zip8 八元Zip
func Zip8(source1, source2, source3, source4, source5, source6, source7, source8 Observable, zipper func(v1, v2, v3, v4, v5, v6, v7, v8 interface{}) (interface{}, error)) Observable {
	return ZipArray([]Observable{source1, source2, source3, source4, source5, source6, source7, source8}, func(values []interface{}) (interface{}, error) {
		return zipper(values[0], values[1], values[2], values[3], values[4], values[5], values[6], values[7])
	})
}

// Zip9 九元Zip
func Zip9(source1, source2, source3, source4, source5, source6, source7, source8, source9 Observable, zipper func(v1, v2, v3, v4, v5, v6, v7, v8, v9 interface{}) (interface{}, error)) Observable {
	return ZipArray([]Observable{source1, source2, source3, source4, source5, source6, source7, source8, source9}, func(values []interface{}) (interface{}, error) {
		return zipper(values[0], values[1], values[2], values[3], values[4], values[5], values[6], values[7], values[8])
	})
}

// Zip10 十元Zip
func Zip10(source1, source2, source3, source4, source5, source6, source7, source8, source9, source10 Observable, zipper func(v1, v2, v3, v4, v5, v6, v7, v8, v9, v10 interface{}) (interface{}, error)) Observable {
	return ZipArray([]Observable{source1, source2, source3, source4, source5, source6, source7, source8, source9, source10}, func(values []interface{}) (interface{}, error) {
		return zipper(values[0], values[1], values[2], values[3], values[4], values[5], values[6], values[7], values[8], values[9])
	})
}

// ============================================================================
// Maybe Zip
// ============================================================================

// ZipMaybes 对一组Maybe做Zip：每个成功值视为单元素序列参与配对。
// 任一Maybe空完成时，配对无法凑齐，聚合立即完成
func ZipMaybes(sources []Maybe, zipper ZipFunc) Observable {
	observables := make([]Observable, len(sources))
	for i, source := range sources {
		observables[i] = source.ToObservable()
	}
	return ZipArray(observables, zipper)
}
