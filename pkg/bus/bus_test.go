package bus_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stickies/pkg/bus"
	"github.com/aretw0/stickies/pkg/core"
)

func startBus(t *testing.T) *bus.Bus {
	t.Helper()
	b := bus.New()
	require.NoError(t, b.Start(context.Background()))
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestBus_PublishWithoutSubscribers(t *testing.T) {
	b := startBus(t)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			b.Publish("nobody-listens")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked with zero subscribers")
	}

	require.Eventually(t, func() bool {
		return b.State().(bus.BusState).Queued == 0
	}, time.Second, 5*time.Millisecond)
}

func TestBus_DeliversInPublishOrder(t *testing.T) {
	b := startBus(t)

	var mu sync.Mutex
	var got []uint64
	_, err := b.Subscribe(context.Background(), func(ctx context.Context, e core.RefreshEvent) {
		mu.Lock()
		got = append(got, e.Seq)
		mu.Unlock()
	})
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		b.Publish("editor")
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 20
	}, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for i, seq := range got {
		assert.Equal(t, uint64(i+1), seq)
	}
}

func TestBus_HandlersNeverRunConcurrently(t *testing.T) {
	b := startBus(t)

	var active, maxActive, calls atomic.Int64
	handler := func(ctx context.Context, e core.RefreshEvent) {
		n := active.Add(1)
		for {
			m := maxActive.Load()
			if n <= m || maxActive.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		active.Add(-1)
		calls.Add(1)
	}

	for i := 0; i < 3; i++ {
		_, err := b.Subscribe(context.Background(), handler)
		require.NoError(t, err)
	}

	for i := 0; i < 10; i++ {
		b.Publish("editor")
	}

	require.Eventually(t, func() bool { return calls.Load() == 30 }, 3*time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(1), maxActive.Load())
}

func TestBus_UnsubscribeOnContextDone(t *testing.T) {
	b := startBus(t)

	var calls atomic.Int64
	ctx, cancel := context.WithCancel(context.Background())
	_, err := b.Subscribe(ctx, func(ctx context.Context, e core.RefreshEvent) {
		calls.Add(1)
	})
	require.NoError(t, err)

	b.Publish("first")
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	require.Eventually(t, func() bool {
		return b.State().(bus.BusState).Subscribers == 0
	}, time.Second, 5*time.Millisecond)

	b.Publish("second")
	require.Never(t, func() bool { return calls.Load() > 1 }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestBus_PublishBeforeStartIsDelivered(t *testing.T) {
	b := bus.New()
	t.Cleanup(func() { _ = b.Close() })

	var calls atomic.Int64
	_, err := b.Subscribe(context.Background(), func(ctx context.Context, e core.RefreshEvent) {
		calls.Add(1)
	})
	require.NoError(t, err)

	b.Publish("early")
	require.NoError(t, b.Start(context.Background()))

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestBus_PublishAfterCloseIsDropped(t *testing.T) {
	b := bus.New()
	require.NoError(t, b.Start(context.Background()))
	require.NoError(t, b.Close())

	assert.NotPanics(t, func() { b.Publish("late") })
	assert.True(t, b.State().(bus.BusState).Closed)
	assert.ErrorIs(t, b.Start(context.Background()), core.ErrClosed)
}
