package provider

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// countingGenerator tracks peak concurrency.
type countingGenerator struct {
	inFlight int64
	peak     int64
	mu       sync.Mutex
}

func (c *countingGenerator) Name() string        { return "counting" }
func (c *countingGenerator) DisplayName() string { return "Counting" }
func (c *countingGenerator) Available() bool     { return true }
func (c *countingGenerator) Generate(ctx context.Context, prompt string, maxSentences int) (string, error) {
	n := atomic.AddInt64(&c.inFlight, 1)
	c.mu.Lock()
	if n > c.peak {
		c.peak = n
	}
	c.mu.Unlock()
	time.Sleep(10 * time.Millisecond)
	atomic.AddInt64(&c.inFlight, -1)
	return "ok", nil
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register(NewMockGenerator())

	t.Run("Get", func(t *testing.T) {
		g, err := reg.Get("mock")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if g.Name() != "mock" {
			t.Errorf("wrong name: %s", g.Name())
		}
	})

	t.Run("Missing", func(t *testing.T) {
		if _, err := reg.Get("nope"); err == nil {
			t.Error("expected error for missing generator")
		}
	})

	t.Run("Available", func(t *testing.T) {
		if got := len(reg.Available()); got != 1 {
			t.Errorf("wrong available count: %d", got)
		}
	})
}

func TestThrottleCapsConcurrency(t *testing.T) {
	inner := &countingGenerator{}
	throttled := NewThrottle(inner, 2)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := throttled.Generate(context.Background(), "p", 0); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if inner.peak > 2 {
		t.Errorf("concurrency cap violated: peak %d", inner.peak)
	}
}

func TestThrottleCanceledWhileQueued(t *testing.T) {
	inner := &MockGenerator{Delay: 200 * time.Millisecond}
	throttled := NewThrottle(inner, 1)

	// Occupy the only slot.
	go throttled.Generate(context.Background(), "long", 0)
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := throttled.Generate(ctx, "queued", 0); err == nil {
		t.Error("expected error for canceled queued call")
	}
}

func TestMockGeneratorCancellation(t *testing.T) {
	g := &MockGenerator{Delay: time.Second}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := g.Generate(ctx, "prompt", 3); err == nil {
		t.Error("expected cancellation error")
	}
}
