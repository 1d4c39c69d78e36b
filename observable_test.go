// Observable tests for rxcore
// 观察者协议、工厂函数与基础操作符测试
package rxcore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestJustDeliveryProtocol(t *testing.T) {
	obs := newRecordingObserver()
	Just(1, 2, 3).Subscribe(obs)

	awaitDone(t, obs)

	// 恰好一次subscribe，值按序，然后恰好一次终止
	want := []string{"subscribe", "next:1", "next:2", "next:3", "complete"}
	if diff := cmp.Diff(want, obs.events.Strings()); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestFactories(t *testing.T) {
	t.Run("Empty completes without values", func(t *testing.T) {
		obs := newRecordingObserver()
		Empty().Subscribe(obs)
		awaitDone(t, obs)
		require.Equal(t, []string{"subscribe", "complete"}, obs.events.Strings())
	})

	t.Run("Error fails immediately", func(t *testing.T) {
		obs := newRecordingObserver()
		Error(errors.New("bang")).Subscribe(obs)
		awaitDone(t, obs)
		require.Equal(t, []string{"subscribe", "error:bang"}, obs.events.Strings())
	})

	t.Run("Never only subscribes", func(t *testing.T) {
		obs := newRecordingObserver()
		d := Never().Subscribe(obs)
		require.Equal(t, []string{"subscribe"}, obs.events.Strings())
		require.False(t, d.IsDisposed())
		d.Dispose()
		require.True(t, d.IsDisposed())
	})

	t.Run("Range emits the interval", func(t *testing.T) {
		obs := newRecordingObserver()
		Range(5, 3).Subscribe(obs)
		awaitDone(t, obs)
		require.Equal(t, []string{"subscribe", "next:5", "next:6", "next:7", "complete"}, obs.events.Strings())
	})

	t.Run("FromChannel completes on close", func(t *testing.T) {
		ch := make(chan interface{}, 3)
		ch <- "a"
		ch <- "b"
		close(ch)

		obs := newRecordingObserver()
		FromChannel(ch).Subscribe(obs)
		awaitDone(t, obs)
		require.Equal(t, []string{"subscribe", "next:a", "next:b", "complete"}, obs.events.Strings())
	})

	t.Run("cancelled context stops the producer", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		obs := newRecordingObserver()
		FromSlice([]interface{}{1, 2, 3}, WithContext(ctx)).Subscribe(obs)

		// 生产者观察到取消后直接退出，不发终止事件
		time.Sleep(50 * time.Millisecond)
		require.Equal(t, []string{"subscribe"}, obs.events.Strings())
	})
}

func TestCreateEmitterGating(t *testing.T) {
	t.Run("no delivery after terminal", func(t *testing.T) {
		obs := newRecordingObserver()
		Create(func(emitter Emitter) {
			emitter.Next(1)
			emitter.Complete()
			emitter.Next(2)
			emitter.Error(errors.New("late"))
			emitter.Complete()
		}).Subscribe(obs)

		awaitDone(t, obs)
		require.Equal(t, []string{"subscribe", "next:1", "complete"}, obs.events.Strings())
	})

	t.Run("no delivery after dispose", func(t *testing.T) {
		events := NewConcurrentList()
		var em Emitter
		d := Create(func(emitter Emitter) {
			em = emitter
		}).SubscribeWith(
			func(value interface{}) { events.Append(value) },
			nil,
			nil,
		)

		d.Dispose()
		em.Next(1)
		em.Complete()

		require.True(t, em.IsDisposed())
		require.Equal(t, 0, events.Len())
	})

	t.Run("registered resources released on terminal", func(t *testing.T) {
		resource := NewDisposable(nil)
		obs := newRecordingObserver()
		Create(func(emitter Emitter) {
			emitter.AddResource(resource)
			emitter.Complete()
		}).Subscribe(obs)

		awaitDone(t, obs)
		require.True(t, resource.IsDisposed())
	})
}

func TestMapOperator(t *testing.T) {
	t.Run("transforms values", func(t *testing.T) {
		obs := newRecordingObserver()
		Just(1, 2, 3).Map(func(value interface{}) (interface{}, error) {
			return value.(int) * 2, nil
		}).Subscribe(obs)

		awaitDone(t, obs)
		require.Equal(t, []string{"subscribe", "next:2", "next:4", "next:6", "complete"}, obs.events.Strings())
	})

	t.Run("transformer error cuts the upstream", func(t *testing.T) {
		source := NewTestObservable()
		obs := newRecordingObserver()
		source.Observable().Map(func(value interface{}) (interface{}, error) {
			if value.(int) > 1 {
				return nil, errors.New("too big")
			}
			return value, nil
		}).Subscribe(obs)

		source.Next(1)
		source.Next(2)

		awaitDone(t, obs)
		require.Equal(t, []string{"subscribe", "next:1", "error:too big"}, obs.events.Strings())
		require.True(t, source.Disposed())

		source.Next(3)
		require.Equal(t, 3, obs.events.Len())
	})

	t.Run("transformer panic becomes an error", func(t *testing.T) {
		obs := newRecordingObserver()
		Just(1).Map(func(value interface{}) (interface{}, error) {
			panic("mapper blew up")
		}).Subscribe(obs)

		awaitDone(t, obs)
		require.Equal(t,
			[]string{"subscribe", "error:rxcore: panic in user function: mapper blew up"},
			obs.events.Strings())
	})
}

func TestFilterOperator(t *testing.T) {
	obs := newRecordingObserver()
	Just(1, 2, 3, 4, 5).Filter(func(value interface{}) bool {
		return value.(int)%2 == 0
	}).Subscribe(obs)

	awaitDone(t, obs)
	require.Equal(t, []string{"subscribe", "next:2", "next:4", "complete"}, obs.events.Strings())
}

func TestTakeOperator(t *testing.T) {
	t.Run("completes after n values and cuts the upstream", func(t *testing.T) {
		source := NewTestObservable()
		obs := newRecordingObserver()
		source.Observable().Take(2).Subscribe(obs)

		source.Next(1)
		source.Next(2)

		awaitDone(t, obs)
		require.Equal(t, []string{"subscribe", "next:1", "next:2", "complete"}, obs.events.Strings())
		require.True(t, source.Disposed())

		source.Next(3)
		require.Equal(t, 4, obs.events.Len())
	})

	t.Run("zero count completes immediately", func(t *testing.T) {
		obs := newRecordingObserver()
		Never().Take(0).Subscribe(obs)
		awaitDone(t, obs)
		require.Equal(t, []string{"subscribe", "complete"}, obs.events.Strings())
	})

	t.Run("short source completes early", func(t *testing.T) {
		obs := newRecordingObserver()
		Just(1).Take(5).Subscribe(obs)
		awaitDone(t, obs)
		require.Equal(t, []string{"subscribe", "next:1", "complete"}, obs.events.Strings())
	})
}

func TestObserveOnPreservesOrder(t *testing.T) {
	obs := newRecordingObserver()
	Range(0, 50).ObserveOn(NewGoroutineScheduler()).Subscribe(obs)

	awaitDone(t, obs)

	want := []string{"subscribe"}
	for i := 0; i < 50; i++ {
		want = append(want, fmt.Sprintf("next:%d", i))
	}
	want = append(want, "complete")
	if diff := cmp.Diff(want, obs.events.Strings()); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestObserveOnImmediateSchedulerDoesNotBlock(t *testing.T) {
	// 内联执行的调度器上泵批次必须有界返回，订阅建立不允许被阻塞
	obs := newRecordingObserver()
	subscribed := make(chan struct{})

	go func() {
		Just(1, 2, 3).ObserveOn(NewImmediateScheduler()).Subscribe(obs)
		close(subscribed)
	}()

	select {
	case <-subscribed:
	case <-time.After(2 * time.Second):
		t.Fatal("Subscribe did not return")
	}

	awaitDone(t, obs)
	require.Equal(t, []string{"subscribe", "next:1", "next:2", "next:3", "complete"}, obs.events.Strings())
}

func TestSubscribeOn(t *testing.T) {
	obs := newRecordingObserver()
	Just(1, 2).SubscribeOn(NewGoroutineScheduler()).Subscribe(obs)

	awaitDone(t, obs)
	require.Equal(t, []string{"subscribe", "next:1", "next:2", "complete"}, obs.events.Strings())
}
