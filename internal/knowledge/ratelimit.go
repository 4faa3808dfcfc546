package knowledge

import (
	"sync"
	"time"
)

// AiRateLimiter serializes collaborator calls with a minimum interval
// between starts: a single-slot executor where each task waits for the
// previous one, then for the interval gate.
type AiRateLimiter struct {
	mu            sync.Mutex
	chain         chan struct{} // Closed channel = previous task finished
	nextAllowedAt time.Time
	minInterval   time.Duration
	now           func() time.Time
	sleep         func(time.Duration)
}

// NewAiRateLimiter creates a limiter with the given minimum interval.
func NewAiRateLimiter(minInterval time.Duration) *AiRateLimiter {
	done := make(chan struct{})
	close(done)
	return &AiRateLimiter{
		chain:       done,
		minInterval: minInterval,
		now:         time.Now,
		sleep:       time.Sleep,
	}
}

// Run chains the task behind all previously submitted tasks, waits out the
// interval gate, runs it, and returns its result.
func (rl *AiRateLimiter) Run(task func() (any, error)) (any, error) {
	rl.mu.Lock()
	prev := rl.chain
	done := make(chan struct{})
	rl.chain = done
	rl.mu.Unlock()

	defer close(done)
	<-prev

	rl.mu.Lock()
	wait := rl.nextAllowedAt.Sub(rl.now())
	rl.mu.Unlock()
	if wait > 0 {
		rl.sleep(wait)
	}

	rl.mu.Lock()
	rl.nextAllowedAt = rl.now().Add(rl.minInterval)
	rl.mu.Unlock()

	return task()
}

// FlightGroup deduplicates concurrent computations by key: callers awaiting
// the same key join the pending result instead of starting a new one.
type FlightGroup struct {
	mu      sync.Mutex
	pending map[string]*flight
}

type flight struct {
	done  chan struct{}
	value any
	err   error
}

// NewFlightGroup creates an empty group.
func NewFlightGroup() *FlightGroup {
	return &FlightGroup{pending: make(map[string]*flight)}
}

// Do runs fn once per key; concurrent callers for the same key share the
// result of the live computation.
func (g *FlightGroup) Do(key string, fn func() (any, error)) (any, error) {
	g.mu.Lock()
	if f, ok := g.pending[key]; ok {
		g.mu.Unlock()
		<-f.done
		return f.value, f.err
	}
	f := &flight{done: make(chan struct{})}
	g.pending[key] = f
	g.mu.Unlock()

	f.value, f.err = fn()
	close(f.done)

	g.mu.Lock()
	delete(g.pending, key)
	g.mu.Unlock()

	return f.value, f.err
}
