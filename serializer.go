// Event serializer for rxcore
// 事件串行化原语：并发到达的事件按接受顺序、互斥地交给处理函数
package rxcore

import (
	"sync"
	"sync/atomic"
)

// ============================================================================
// 事件定义
// ============================================================================

// eventKind 事件类别
type eventKind int32

const (
	// eventNext 某个源发射了一个值
	eventNext eventKind = iota
	// eventComplete 某个源完成
	eventComplete
	// eventError 某个源或组合函数失败
	eventError
)

// event 带标签的事件，index标识多路复用时的来源
type event struct {
	kind  eventKind
	index int
	value interface{}
	err   error
}

// nextEvent 构造值事件
func nextEvent(index int, value interface{}) event {
	return event{kind: eventNext, index: index, value: value}
}

// completeEvent 构造完成事件
func completeEvent(index int) event {
	return event{kind: eventComplete, index: index}
}

// errorEvent 构造错误事件
func errorEvent(err error) event {
	return event{kind: eventError, err: err}
}

// ============================================================================
// 串行化器
// ============================================================================

// serializer 把任意数量goroutine并发提交的事件串行化：
// 处理函数在任一时刻至多有一个调用在执行，事件按接受顺序处理，
// 处理函数返回false后剩余以及后续事件全部丢弃。
//
// 所有权交接：accept先在锁内入队，再对进行中计数做原子加一，
// 从0加到1的调用者成为drain循环的所有者，在自己的goroutine上
// 批量出队并调用处理函数；其他调用者只入队即返回。
// 所有者只有在按入队计数原子递减确认队列为空之后才释放所有权，
// 避免"最后一次出队与释放标志之间有人入队"的经典活性竞争。
// 处理函数执行期间不持有队列锁，慢的用户代码只拖慢所有者自己，
// 绝不阻塞其他生产者goroutine
type serializer struct {
	mu      sync.Mutex
	queue   []event
	wip     int32
	stopped int32
	handler func(ev event) bool
}

// newSerializer 创建串行化器，handler返回false表示停止并丢弃后续事件
func newSerializer(handler func(ev event) bool) *serializer {
	return &serializer{
		handler: handler,
	}
}

// accept 接受一个事件。调用者可能立刻返回（事件交给当前所有者处理），
// 也可能成为所有者并顺带处理掉其他goroutine入队的事件；
// 协议只要求顺序与互斥，不要求线程亲和
func (s *serializer) accept(ev event) {
	if atomic.LoadInt32(&s.stopped) == 1 {
		return
	}

	s.mu.Lock()
	s.queue = append(s.queue, ev)
	s.mu.Unlock()

	if atomic.AddInt32(&s.wip, 1) != 1 {
		return
	}

	s.drain()
}

// drain 由所有权获得者执行的排空循环
func (s *serializer) drain() {
	missed := int32(1)
	for {
		for {
			s.mu.Lock()
			if len(s.queue) == 0 {
				s.mu.Unlock()
				break
			}
			ev := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()

			if atomic.LoadInt32(&s.stopped) == 1 {
				continue
			}
			if !s.handler(ev) {
				atomic.StoreInt32(&s.stopped, 1)
			}
		}

		// 只有按已计入的信号数递减并确认归零才能释放所有权，
		// 期间有新信号到达则继续持有所有权排空新批次
		missed = atomic.AddInt32(&s.wip, -missed)
		if missed == 0 {
			return
		}
	}
}

// isStopped 串行化器是否已永久停止
func (s *serializer) isStopped() bool {
	return atomic.LoadInt32(&s.stopped) == 1
}
