// Package rxcore provides reactive concurrency primitives for Go
// 响应式并发核心库：推送式观察者协议、资源释放、事件串行化与Zip组合协调
package rxcore

import (
	"context"
	"fmt"
)

// ============================================================================
// 核心类型定义
// ============================================================================

// OnNext 处理下一个值的函数
type OnNext func(value interface{})

// OnError 处理错误的函数
type OnError func(err error)

// OnComplete 处理完成的函数
type OnComplete func()

// Predicate 谓词函数，用于过滤
type Predicate func(value interface{}) bool

// Transformer 转换函数，用于映射
type Transformer func(value interface{}) (interface{}, error)

// ZipFunc N元组合函数，把每个源的队头按声明顺序组合成一个结果
type ZipFunc func(values []interface{}) (interface{}, error)

// ============================================================================
// 观察者协议
// ============================================================================

// Observer 推送协议的接收方。
// 协议约定：生产者必须先恰好调用一次OnSubscribe，之后任意次OnNext，
// 最后恰好一次OnComplete或OnError；终止事件之后或者订阅释放之后，
// 不允许再有任何回调。
type Observer interface {
	// OnSubscribe 订阅建立时回调，携带本次订阅的Disposable
	OnSubscribe(d Disposable)

	// OnNext 接收下一个值
	OnNext(value interface{})

	// OnError 接收错误并终止序列
	OnError(err error)

	// OnComplete 接收完成信号并终止序列
	OnComplete()
}

// Observable 可观察序列的核心接口
type Observable interface {
	// Subscribe 订阅观察者，返回本次订阅的Disposable
	Subscribe(observer Observer) Disposable

	// SubscribeWith 使用回调函数订阅
	SubscribeWith(onNext OnNext, onError OnError, onComplete OnComplete) Disposable

	// 转换操作符
	Map(transformer Transformer) Observable
	Filter(predicate Predicate) Observable
	Take(count int) Observable

	// 调度操作符
	SubscribeOn(scheduler Scheduler) Observable
	ObserveOn(scheduler Scheduler) Observable
}

// ============================================================================
// 回调观察者适配器
// ============================================================================

// callbackObserver 把三个回调函数适配成Observer
type callbackObserver struct {
	onNext     OnNext
	onError    OnError
	onComplete OnComplete
}

// NewObserver 从回调函数创建观察者，回调允许为nil
func NewObserver(onNext OnNext, onError OnError, onComplete OnComplete) Observer {
	return &callbackObserver{
		onNext:     onNext,
		onError:    onError,
		onComplete: onComplete,
	}
}

// OnSubscribe 回调观察者不保留订阅句柄，订阅句柄由Subscribe的返回值管理
func (c *callbackObserver) OnSubscribe(d Disposable) {}

// OnNext 接收下一个值
func (c *callbackObserver) OnNext(value interface{}) {
	if c.onNext != nil {
		c.onNext(value)
	}
}

// OnError 接收错误
func (c *callbackObserver) OnError(err error) {
	if c.onError != nil {
		c.onError(err)
	}
}

// OnComplete 接收完成信号
func (c *callbackObserver) OnComplete() {
	if c.onComplete != nil {
		c.onComplete()
	}
}

// ============================================================================
// 工具函数
// ============================================================================

// SafeCall 安全执行用户函数，把panic转换为error返回。
// 组合函数等用户代码在串行化drain循环内执行时绝不允许让panic逃逸，
// 逃逸会使drain循环的所有权计数处于不一致状态
func SafeCall(fn func() (interface{}, error)) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("rxcore: panic in user function: %v", r)
			}
		}
	}()

	return fn()
}

// ============================================================================
// 配置选项
// ============================================================================

// Option 配置选项接口
type Option interface {
	Apply(config *Config)
}

// Config 配置结构
type Config struct {
	BufferSize int
	Context    context.Context
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		BufferSize: 16,
		Context:    context.Background(),
	}
}

// optionFunc 函数式选项
type optionFunc func(config *Config)

// Apply 应用选项
func (f optionFunc) Apply(config *Config) {
	f(config)
}

// WithBufferSize 设置内部缓冲区大小（ObserveOn等异步环节使用）
func WithBufferSize(size int) Option {
	return optionFunc(func(config *Config) {
		if size > 0 {
			config.BufferSize = size
		}
	})
}

// WithContext 设置生产者使用的上下文，上下文取消后工厂生产者停止发射
func WithContext(ctx context.Context) Option {
	return optionFunc(func(config *Config) {
		if ctx != nil {
			config.Context = ctx
		}
	})
}
