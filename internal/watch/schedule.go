package watch

import (
	"sync"
	"time"
)

// debouncer collapses bursts of Trigger calls into one call of fire,
// issued after the interval has passed without another trigger.
type debouncer struct {
	mu       sync.Mutex
	interval time.Duration
	timer    *time.Timer
	fire     func()
	stopped  bool
}

func newDebouncer(interval time.Duration, fire func()) *debouncer {
	return &debouncer{interval: interval, fire: fire}
}

func (d *debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.fire)
}

func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}

// scheduler runs build at most once at a time. A request arriving while a
// build runs marks one follow-up build; further requests fold into it.
type scheduler struct {
	mu      sync.Mutex
	running bool
	pending bool
	closed  bool
	build   func()
	wg      sync.WaitGroup
}

func newScheduler(build func()) *scheduler {
	return &scheduler{build: build}
}

func (s *scheduler) Request() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.running {
		s.pending = true
		s.mu.Unlock()
		return
	}
	s.running = true
	s.wg.Add(1)
	s.mu.Unlock()

	go s.loop()
}

func (s *scheduler) loop() {
	defer s.wg.Done()
	for {
		s.build()

		s.mu.Lock()
		if !s.pending {
			s.running = false
			s.mu.Unlock()
			return
		}
		s.pending = false
		s.mu.Unlock()
	}
}

// Close drops any pending follow-up, rejects new requests and waits for a
// running build to finish.
func (s *scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.pending = false
	s.mu.Unlock()
	s.wg.Wait()
}
