// Scheduler implementations for rxcore
// 调度器：一个"现在或稍后在某个执行环境运行任务"的显式能力，
// 核心算法自身保持调度器无关
package rxcore

import (
	"context"
	"time"
)

// ============================================================================
// 调度器接口
// ============================================================================

// Scheduler 调度器接口，控制任务执行时机和方式
type Scheduler interface {
	// Schedule 调度一个任务
	Schedule(action func()) Disposable

	// ScheduleWithDelay 延迟调度一个任务
	ScheduleWithDelay(action func(), delay time.Duration) Disposable

	// ScheduleWithContext 带上下文的调度，上下文已取消则不执行
	ScheduleWithContext(ctx context.Context, action func()) Disposable
}

// delayTask 延迟后执行fn的通用实现。
// 释放时关闭stop让等待中的goroutine立即退出并回收计时器，
// 被取消的延迟任务不会留下阻塞在计时器通道上的goroutine
func delayTask(delay time.Duration, fn func()) Disposable {
	timer := time.NewTimer(delay)
	stop := make(chan struct{})
	d := NewDisposable(func() { close(stop) })

	go func() {
		defer timer.Stop()
		select {
		case <-timer.C:
			if !d.IsDisposed() {
				fn()
			}
		case <-stop:
		}
	}()

	return d
}

// ============================================================================
// 立即调度器
// ============================================================================

// immediateScheduler 在当前goroutine中立即执行任务
type immediateScheduler struct{}

// NewImmediateScheduler 创建立即调度器
func NewImmediateScheduler() Scheduler {
	return &immediateScheduler{}
}

// Schedule 立即执行任务
func (s *immediateScheduler) Schedule(action func()) Disposable {
	action()
	return DisposedDisposable()
}

// ScheduleWithDelay 延迟执行任务
func (s *immediateScheduler) ScheduleWithDelay(action func(), delay time.Duration) Disposable {
	return delayTask(delay, action)
}

// ScheduleWithContext 带上下文执行任务
func (s *immediateScheduler) ScheduleWithContext(ctx context.Context, action func()) Disposable {
	select {
	case <-ctx.Done():
	default:
		action()
	}
	return DisposedDisposable()
}

// ============================================================================
// Goroutine调度器
// ============================================================================

// goroutineScheduler 每个任务使用一个新goroutine执行
type goroutineScheduler struct{}

// NewGoroutineScheduler 创建goroutine调度器
func NewGoroutineScheduler() Scheduler {
	return &goroutineScheduler{}
}

// Schedule 在新goroutine中执行任务
func (s *goroutineScheduler) Schedule(action func()) Disposable {
	d := NewDisposable(nil)

	go func() {
		if !d.IsDisposed() {
			action()
		}
	}()

	return d
}

// ScheduleWithDelay 延迟后在新goroutine中执行任务
func (s *goroutineScheduler) ScheduleWithDelay(action func(), delay time.Duration) Disposable {
	return delayTask(delay, action)
}

// ScheduleWithContext 带上下文在新goroutine中执行任务
func (s *goroutineScheduler) ScheduleWithContext(ctx context.Context, action func()) Disposable {
	d := NewDisposable(nil)

	go func() {
		select {
		case <-ctx.Done():
		default:
			if !d.IsDisposed() {
				action()
			}
		}
	}()

	return d
}

// ============================================================================
// 串行调度器
// ============================================================================

// serialScheduler FIFO且一次一个地执行任务，基于事件串行化器实现：
// 提交者要么立即返回，要么赢得drain所有权并顺带执行队列中的任务。
// 蹦床语义：任务可能在提交者自己的goroutine上执行
type serialScheduler struct {
	serializer *serializer
}

// NewSerialScheduler 创建串行调度器
func NewSerialScheduler() Scheduler {
	s := &serialScheduler{}
	s.serializer = newSerializer(func(ev event) bool {
		ev.value.(func())()
		return true
	})
	return s
}

// Schedule 提交任务，已提交任务按提交顺序互斥执行
func (s *serialScheduler) Schedule(action func()) Disposable {
	d := NewDisposable(nil)

	s.serializer.accept(nextEvent(0, func() {
		if !d.IsDisposed() {
			action()
		}
	}))

	return d
}

// ScheduleWithDelay 延迟后提交任务
func (s *serialScheduler) ScheduleWithDelay(action func(), delay time.Duration) Disposable {
	return delayTask(delay, func() { s.Schedule(action) })
}

// ScheduleWithContext 带上下文提交任务
func (s *serialScheduler) ScheduleWithContext(ctx context.Context, action func()) Disposable {
	return s.Schedule(func() {
		select {
		case <-ctx.Done():
		default:
			action()
		}
	})
}
