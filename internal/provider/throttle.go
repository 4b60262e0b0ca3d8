package provider

import "context"

// Throttle wraps a Generator with a process-wide cap on simultaneous
// in-flight calls. Excess callers queue until a slot frees up or their
// context is canceled; requests are never dropped.
type Throttle struct {
	inner Generator
	slots chan struct{}
}

// NewThrottle caps concurrent calls to inner at max. A max below 1 is
// treated as 1.
func NewThrottle(inner Generator, max int) *Throttle {
	if max < 1 {
		max = 1
	}
	return &Throttle{
		inner: inner,
		slots: make(chan struct{}, max),
	}
}

// Name returns the wrapped generator's identifier.
func (t *Throttle) Name() string { return t.inner.Name() }

// DisplayName returns the wrapped generator's human-friendly name.
func (t *Throttle) DisplayName() string { return t.inner.DisplayName() }

// Available reports the wrapped generator's availability.
func (t *Throttle) Available() bool { return t.inner.Available() }

// Generate acquires a slot, forwards the call, and releases the slot.
func (t *Throttle) Generate(ctx context.Context, prompt string, maxSentences int) (string, error) {
	select {
	case t.slots <- struct{}{}:
		defer func() { <-t.slots }()
	case <-ctx.Done():
		return "", &GenerationError{Provider: t.inner.Name(), Message: "canceled while queued", Err: ctx.Err()}
	}

	return t.inner.Generate(ctx, prompt, maxSentences)
}
