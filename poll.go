package hastic

import (
	"context"
	"sync"
	"time"
)

// Sequence is a lazy, unbounded series of poll results.
//
// Each call to Next fetches one element. The configured interval is waited
// out between the end of one fetch and the start of the next, so the
// effective period is interval plus fetch latency rather than a fixed
// wall-clock cadence. The first element is fetched without any initial
// delay.
//
// A Sequence never terminates on its own. Consumers stop it either by
// cancelling the context passed to Next or by calling [Sequence.Stop],
// after which Next returns [ErrSequenceStopped]. A sequence belongs to one
// consumer: Next must not be called from multiple goroutines at once.
// Stop is the one exception and may be called from any goroutine,
// including while another goroutine is blocked in Next. The timer is only
// ever touched by the consumer goroutine; Stop just closes a channel.
type Sequence[T any] struct {
	interval time.Duration
	fetch    func(ctx context.Context) (T, error)
	timer    *time.Timer
	stop     chan struct{}
	stopOnce sync.Once
}

func newSequence[T any](interval time.Duration, fetch func(ctx context.Context) (T, error)) *Sequence[T] {
	return &Sequence[T]{
		interval: interval,
		fetch:    fetch,
		stop:     make(chan struct{}),
	}
}

// Next returns the next element of the sequence.
//
// A failing fetch propagates out of this call only; the sequence stays
// usable and the following call polls again with no backoff. A context
// cancellation during the inter-element wait returns ctx.Err() without
// consuming the tick, so a retried Next resumes the same wait.
func (s *Sequence[T]) Next(ctx context.Context) (T, error) {
	var zero T

	select {
	case <-s.stop:
		s.releaseTimer()
		return zero, ErrSequenceStopped
	default:
	}

	if s.timer != nil {
		select {
		case <-s.timer.C:
			s.timer = nil
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-s.stop:
			s.releaseTimer()
			return zero, ErrSequenceStopped
		}
	}

	value, err := s.fetch(ctx)
	s.timer = time.NewTimer(s.interval)
	return value, err
}

// releaseTimer stops and drops an armed inter-element timer. Only the
// consumer goroutine calls it, so the timer field needs no lock.
func (s *Sequence[T]) releaseTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Stop cancels the sequence. It is idempotent, safe to call from any
// goroutine, unblocks a Next call waiting between elements, and makes
// every later Next return [ErrSequenceStopped]. A sequence abandoned
// without a final Next call leaks at most one armed timer, which fires
// once with no observable effect.
func (s *Sequence[T]) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

// PollStatus returns a sequence that repeatedly fetches the processing
// status of an analytic unit. A 404 from the status endpoint surfaces as
// an element with Status set to [StatusNotFound] instead of an error, so
// consumers always see a stable shape; every other failure propagates out
// of the corresponding Next call.
func (s *Service) PollStatus(unitID string, interval time.Duration) (*Sequence[AnalyticUnitStatus], error) {
	if unitID == "" {
		return nil, ErrUnitIDRequired
	}
	return newSequence(interval, func(ctx context.Context) (AnalyticUnitStatus, error) {
		return s.UnitStatus(ctx, unitID)
	}), nil
}

// SpanSequence polls the detection spans of an analytic unit over a fixed
// window. The window never advances on its own; callers that want to move
// it forward call [SpanSequence.SetWindow] between iterations.
type SpanSequence struct {
	*Sequence[[]DetectionSpan]

	mu     sync.Mutex
	window Window
}

// SetWindow replaces the [From, To) window used by subsequent fetches.
func (ss *SpanSequence) SetWindow(from, to int64) {
	ss.mu.Lock()
	ss.window = Window{From: from, To: to}
	ss.mu.Unlock()
}

func (ss *SpanSequence) currentWindow() Window {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.window
}

// PollSpans returns a sequence that re-queries the detection spans of an
// analytic unit over the same [from, to) window on every tick.
func (s *Service) PollSpans(unitID string, from, to int64, interval time.Duration) (*SpanSequence, error) {
	if unitID == "" {
		return nil, ErrUnitIDRequired
	}
	ss := &SpanSequence{window: Window{From: from, To: to}}
	ss.Sequence = newSequence(interval, func(ctx context.Context) ([]DetectionSpan, error) {
		w := ss.currentWindow()
		return s.DetectionSpans(ctx, unitID, w.From, w.To)
	})
	return ss, nil
}
