package pipeline

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
)

// countingStep tracks how many executions overlap.
type countingStep struct {
	current atomic.Int32
	peak    atomic.Int32
	done    chan struct{}
}

func (s *countingStep) Name() string {
	return "counting"
}

func (s *countingStep) Do(_ context.Context, _ *State) error {
	n := s.current.Add(1)
	for {
		peak := s.peak.Load()
		if n <= peak || s.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	<-s.done
	s.current.Add(-1)
	return nil
}

// TestProcessBatch tests that every mirror is processed and results keep
// the input order.
func TestProcessBatch(t *testing.T) {
	t.Parallel()

	factory := func(mirror string) (*Pipeline, *State, error) {
		p := New()
		p.AddStep(&recordingStep{name: "noop", log: &[]string{}})
		return p, &State{Mirror: mirror}, nil
	}

	b := NewBatchProcessor(factory)
	mirrors := []string{"alpha", "beta", "gamma"}

	states, err := b.ProcessBatch(context.Background(), mirrors)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(states) != len(mirrors) {
		t.Fatalf("expected %d states, got %d", len(mirrors), len(states))
	}
	for i, mirror := range mirrors {
		if states[i] == nil || states[i].Mirror != mirror {
			t.Errorf("expected state %d for mirror %q, got %+v", i, mirror, states[i])
		}
	}
}

// TestProcessBatchConcurrencyLimit tests that no more mirrors run at once
// than the configured limit.
func TestProcessBatchConcurrencyLimit(t *testing.T) {
	t.Parallel()

	step := &countingStep{done: make(chan struct{})}
	factory := func(mirror string) (*Pipeline, *State, error) {
		p := New()
		p.AddStep(step)
		return p, &State{Mirror: mirror}, nil
	}

	b := NewBatchProcessor(factory, WithConcurrency(2))
	mirrors := []string{"a", "b", "c", "d", "e"}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := b.ProcessBatch(context.Background(), mirrors); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	}()

	close(step.done)
	wg.Wait()

	if peak := step.peak.Load(); peak > 2 {
		t.Errorf("expected at most 2 concurrent mirrors, observed %d", peak)
	}
}

// TestProcessBatchRecordsErrors tests that a failing mirror does not stop
// the others.
func TestProcessBatchRecordsErrors(t *testing.T) {
	t.Parallel()

	stepErr := errors.New("step failed")
	factory := func(mirror string) (*Pipeline, *State, error) {
		p := New()
		if mirror == "broken" {
			p.AddStep(&recordingStep{name: "bad", log: &[]string{}, err: stepErr})
		} else {
			p.AddStep(&recordingStep{name: "ok", log: &[]string{}})
		}
		return p, &State{Mirror: mirror}, nil
	}

	b := NewBatchProcessor(factory)
	states, err := b.ProcessBatch(context.Background(), []string{"good", "broken", "fine"})
	if err != nil {
		t.Fatalf("unexpected batch error: %v", err)
	}

	if !errors.Is(states[1].Err, stepErr) {
		t.Errorf("expected the failing mirror's error recorded, got %v", states[1].Err)
	}
	if states[0].Err != nil || states[2].Err != nil {
		t.Error("expected the other mirrors to succeed")
	}
}

// TestProcessBatchFactoryError tests that a factory failure is recorded on
// a placeholder state.
func TestProcessBatchFactoryError(t *testing.T) {
	t.Parallel()

	factoryErr := errors.New("no such mirror")
	factory := func(mirror string) (*Pipeline, *State, error) {
		return nil, nil, factoryErr
	}

	b := NewBatchProcessor(factory)
	states, err := b.ProcessBatch(context.Background(), []string{"ghost"})
	if err != nil {
		t.Fatalf("unexpected batch error: %v", err)
	}
	if !errors.Is(states[0].Err, factoryErr) {
		t.Errorf("expected factory error recorded, got %v", states[0].Err)
	}
	if states[0].Mirror != "ghost" {
		t.Errorf("expected placeholder state for mirror ghost, got %q", states[0].Mirror)
	}
}

// TestProcessBatchWithCallback tests that the callback sees every mirror.
func TestProcessBatchWithCallback(t *testing.T) {
	t.Parallel()

	factory := func(mirror string) (*Pipeline, *State, error) {
		p := New()
		p.AddStep(&recordingStep{name: "noop", log: &[]string{}})
		return p, &State{Mirror: mirror}, nil
	}

	b := NewBatchProcessor(factory, WithConcurrency(3))
	mirrors := []string{"one", "two", "three"}

	var seen []string
	err := b.ProcessBatchWithCallback(context.Background(), mirrors, func(state *State) {
		seen = append(seen, state.Mirror)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sort.Strings(seen)
	want := []string{"one", "three", "two"}
	for i := range want {
		if i >= len(seen) || seen[i] != want[i] {
			t.Fatalf("expected callbacks for %v, got %v", want, seen)
		}
	}
}
