package watch

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDebouncer_CollapsesBursts(t *testing.T) {
	var fired atomic.Int32
	d := newDebouncer(30*time.Millisecond, func() { fired.Add(1) })

	for i := 0; i < 5; i++ {
		d.Trigger()
		time.Sleep(5 * time.Millisecond)
	}
	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	require.Equal(t, int32(1), fired.Load())
}

func TestDebouncer_StopCancelsPendingFire(t *testing.T) {
	var fired atomic.Int32
	d := newDebouncer(20*time.Millisecond, func() { fired.Add(1) })
	d.Trigger()
	d.Stop()
	d.Trigger()

	time.Sleep(60 * time.Millisecond)
	require.Zero(t, fired.Load())
}

func TestScheduler_SerializesAndCoalesces(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 10)
	var mu sync.Mutex
	active, maxActive, runs := 0, 0, 0

	s := newScheduler(func() {
		mu.Lock()
		active++
		runs++
		if active > maxActive {
			maxActive = active
		}
		mu.Unlock()

		started <- struct{}{}
		<-release

		mu.Lock()
		active--
		mu.Unlock()
	})

	s.Request()
	<-started

	// Requests while the first build runs collapse into one follow-up.
	for i := 0; i < 5; i++ {
		s.Request()
	}
	release <- struct{}{}
	<-started
	release <- struct{}{}
	s.Close()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 2, runs)
	require.Equal(t, 1, maxActive)
}

func TestScheduler_CloseRejectsRequests(t *testing.T) {
	var runs atomic.Int32
	s := newScheduler(func() { runs.Add(1) })
	s.Close()
	s.Request()
	require.Zero(t, runs.Load())
}
