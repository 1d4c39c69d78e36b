// Disposable implementations for rxcore
// 可释放资源：幂等的取消/释放句柄与组合式资源管理器
package rxcore

import (
	"sync"
	"sync/atomic"
)

// ============================================================================
// Disposable 接口
// ============================================================================

// Disposable 可释放资源的接口。Dispose必须幂等：
// 重复调用没有额外效果，释放标志单向地从false变为true
type Disposable interface {
	// Dispose 释放资源，至多执行一次
	Dispose()

	// IsDisposed 检查是否已释放，纯查询无副作用
	IsDisposed() bool
}

// ============================================================================
// 基础实现
// ============================================================================

// baseDisposable 基础可释放资源实现
type baseDisposable struct {
	disposed int32
	action   func()
}

// NewDisposable 创建可释放资源，释放时至多执行一次action，action允许为nil
func NewDisposable(action func()) Disposable {
	return &baseDisposable{
		action: action,
	}
}

// Dispose 释放资源
func (d *baseDisposable) Dispose() {
	if atomic.CompareAndSwapInt32(&d.disposed, 0, 1) {
		if d.action != nil {
			d.action()
		}
	}
}

// IsDisposed 检查是否已释放
func (d *baseDisposable) IsDisposed() bool {
	return atomic.LoadInt32(&d.disposed) == 1
}

// disposedDisposable 恒为已释放状态的哨兵
type disposedDisposable struct{}

// Dispose 无操作
func (disposedDisposable) Dispose() {}

// IsDisposed 恒为true
func (disposedDisposable) IsDisposed() bool { return true }

// DisposedDisposable 返回一个已处于释放状态的Disposable
func DisposedDisposable() Disposable {
	return disposedDisposable{}
}

// ============================================================================
// CompositeDisposable 组合式资源管理器
// ============================================================================

// CompositeDisposable 组合式资源管理器，统一持有并释放一组Disposable。
// 所有方法都可以被任意goroutine并发调用。
// 锁只保护成员集合本身，成员的Dispose一律在锁外执行，
// 成员释放时重入Add/Remove不会死锁
type CompositeDisposable struct {
	mu        sync.Mutex
	disposed  bool
	resources []Disposable
}

// NewCompositeDisposable 创建组合式资源管理器
func NewCompositeDisposable(disposables ...Disposable) *CompositeDisposable {
	return &CompositeDisposable{
		resources: append([]Disposable(nil), disposables...),
	}
}

// Add 添加可释放资源。
// 向已释放的组合添加时，立即释放该资源并且不保留引用，
// 避免订阅与取消竞争时的资源泄漏
func (cd *CompositeDisposable) Add(d Disposable) {
	if d == nil {
		return
	}

	cd.mu.Lock()
	if cd.disposed {
		cd.mu.Unlock()
		d.Dispose()
		return
	}
	cd.resources = append(cd.resources, d)
	cd.mu.Unlock()
}

// Remove 移除成员但不释放它，成员可以在释放前被安全取走
func (cd *CompositeDisposable) Remove(d Disposable) bool {
	if d == nil {
		return false
	}

	cd.mu.Lock()
	defer cd.mu.Unlock()

	for i, resource := range cd.resources {
		if resource == d {
			cd.resources = append(cd.resources[:i], cd.resources[i+1:]...)
			return true
		}
	}
	return false
}

// Dispose 释放所有成员并把组合标记为已释放，每个成员恰好释放一次
func (cd *CompositeDisposable) Dispose() {
	cd.mu.Lock()
	if cd.disposed {
		cd.mu.Unlock()
		return
	}
	cd.disposed = true
	resources := cd.resources
	cd.resources = nil
	cd.mu.Unlock()

	for _, resource := range resources {
		resource.Dispose()
	}
}

// IsDisposed 检查组合是否已释放
func (cd *CompositeDisposable) IsDisposed() bool {
	cd.mu.Lock()
	defer cd.mu.Unlock()
	return cd.disposed
}

// Size 当前持有的成员数量
func (cd *CompositeDisposable) Size() int {
	cd.mu.Lock()
	defer cd.mu.Unlock()
	return len(cd.resources)
}
