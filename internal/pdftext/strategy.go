package pdftext

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Strategy is one independent way of getting text out of a PDF. Extract
// reports an outcome for every variant it tried, in the order it tried them,
// and must honour ctx cancellation at every blocking point.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, doc Document) []Outcome
}

// Reporter is implemented by strategies that can hand over each variant's
// outcome as soon as it is known. runStage keeps those outcomes even when the
// strategy as a whole overruns its budget.
type Reporter interface {
	ExtractTo(ctx context.Context, doc Document, report func(Outcome))
}

// Stage places a strategy in the pipeline.
type Stage struct {
	Strategy Strategy
	// Budget bounds the whole strategy. Zero leaves only the caller's deadline.
	Budget time.Duration
	// EarlyAccept lets a long enough success end the pipeline immediately.
	EarlyAccept bool
}

// strategyGrace is how long the adapter waits for a strategy to report its own
// outcomes after the budget expires, before synthesising a timeout.
const strategyGrace = 250 * time.Millisecond

// outcomeSink collects outcomes from a strategy goroutine. Once sealed, late
// reports from an overrunning strategy are dropped.
type outcomeSink struct {
	mu       sync.Mutex
	outcomes []Outcome
	sealed   bool
}

func (s *outcomeSink) add(o Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.sealed {
		s.outcomes = append(s.outcomes, o)
	}
}

func (s *outcomeSink) seal() []Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sealed = true
	return append([]Outcome(nil), s.outcomes...)
}

// runStage executes a strategy under its budget, converting panics and
// overruns into failed outcomes so nothing escapes to the caller.
func runStage(ctx context.Context, st Stage, doc Document) []Outcome {
	name := st.Strategy.Name()
	sctx, cancel := ctx, context.CancelFunc(func() {})
	if st.Budget > 0 {
		sctx, cancel = context.WithTimeout(ctx, st.Budget)
	}
	defer cancel()

	start := time.Now()
	sink := &outcomeSink{}
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				sink.add(Outcome{
					Variant: "all",
					Err:     &StrategyExecutionError{Strategy: name, Variant: "all", Err: fmt.Errorf("panic: %v", r)},
					Elapsed: time.Since(start),
				})
			}
		}()
		if rep, ok := st.Strategy.(Reporter); ok {
			rep.ExtractTo(sctx, doc, sink.add)
			return
		}
		for _, o := range st.Strategy.Extract(sctx, doc) {
			sink.add(o)
		}
	}()

	var outcomes []Outcome
	select {
	case <-done:
		outcomes = sink.seal()
	case <-sctx.Done():
		grace := time.NewTimer(strategyGrace)
		defer grace.Stop()
		select {
		case <-done:
			outcomes = sink.seal()
		case <-grace.C:
			outcomes = append(sink.seal(), Outcome{
				Variant: "all",
				Err:     &StrategyTimeoutError{Strategy: name, Variant: "all", Budget: st.Budget},
				Elapsed: time.Since(start),
			})
		}
	}

	if len(outcomes) == 0 {
		outcomes = []Outcome{{
			Variant: "all",
			Err:     &StrategyExecutionError{Strategy: name, Variant: "all", Err: ErrEmptyOutput},
			Elapsed: time.Since(start),
		}}
	}
	return outcomes
}
