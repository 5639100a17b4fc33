// Package checker runs a concurrent consistency workload against a store,
// structured as a small ring of named states connected by a router: each
// state pulls a unit of work off its inbox, performs one store operation,
// optionally compares the result against what it expects, and forwards
// the outcome to whichever state comes next. Used by cmd/blockkv-check to
// drive sustained set/get/delete traffic against a live database and flag
// any observed inconsistency.
package checker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrNotConfigured is returned by Run when no data source or no states
// have been registered yet.
var ErrNotConfigured = errors.New("checker: not configured")

// Round carries one unit of work between states: the key/value under
// test, which state produced it, and which state it should be routed to
// next (empty means the round is finished).
type Round struct {
	From string
	Next string
	Key  string
	Want any
	Got  any
}

func (r Round) String() string {
	return fmt.Sprintf("(%s -> %s) key=%s want=%v got=%v", r.From, r.Next, r.Key, r.Want, r.Got)
}

// StepFunc performs one state's operation against the store and returns
// the round advanced to its next state.
type StepFunc func(Round) (Round, error)

// VerifyFunc compares a round before and after a step ran; a non-nil
// error is logged as an inconsistency but never stops the workload.
type VerifyFunc func(before, after Round) error

// State is one named stage of the workload (insert, get, update, remove,
// ...), run by GoCount concurrent workers pulling from its own inbox.
type State struct {
	Name    string
	GoCount uint

	step   StepFunc
	verify VerifyFunc
	inbox  chan Round

	sugar *zap.SugaredLogger
}

// NewState returns a state with goCount workers, logging through logger.
func NewState(name string, goCount uint, logger *zap.Logger) *State {
	return &State{
		Name:    name,
		GoCount: goCount,
		sugar:   logger.Sugar(),
		inbox:   make(chan Round),
	}
}

// SetStep installs the state's operation.
func (s *State) SetStep(f StepFunc) { s.step = f }

// SetVerify installs the state's optional consistency check.
func (s *State) SetVerify(f VerifyFunc) { s.verify = f }

// Push enqueues a round for this state to process.
func (s *State) Push(r Round) {
	s.inbox <- r
}

func (s *State) worker(ctx context.Context, router chan<- Round, retired chan<- struct{}) {
	defer func() { retired <- struct{}{} }()

	s.sugar.Debugw("worker started", "state", s.Name)
	for {
		select {
		case <-ctx.Done():
			s.sugar.Debugw("worker stopped", "state", s.Name)
			return
		case before := <-s.inbox:
			after, err := s.step(before)
			if err != nil {
				s.sugar.Errorw("step failed", "state", s.Name, "round", before, "error", err)
				continue
			}
			if s.verify != nil {
				if err := s.verify(before, after); err != nil {
					s.sugar.Errorw("inconsistency detected", "state", s.Name, "error", err)
				}
			}
			if after.Next != "" {
				router <- after
			}
		}
	}
}

// SourceFunc produces the next round of fresh work, fed into the ring
// whenever the workload wants to start a new unit of work.
type SourceFunc func() (Round, error)

// Supervisor owns the ring of states, the router between them, and the
// source of fresh work. Grounded on the teacher's job/router/supervisor
// goroutine shape, retargeted here to a store consistency workload
// instead of a gRPC call sequence.
type Supervisor struct {
	mu     sync.RWMutex
	states map[string]*State
	source SourceFunc

	router   chan Round
	retired  chan struct{}
	workerWG sync.WaitGroup

	sugar *zap.SugaredLogger
}

// NewSupervisor returns an empty supervisor.
func NewSupervisor(logger *zap.Logger) *Supervisor {
	return &Supervisor{
		sugar:   logger.Sugar(),
		states:  make(map[string]*State),
		router:  make(chan Round),
		retired: make(chan struct{}),
	}
}

// Add registers a state under its name.
func (sv *Supervisor) Add(s *State) {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	sv.states[s.Name] = s
}

// SetSource installs the function that manufactures fresh rounds of work.
func (sv *Supervisor) SetSource(f SourceFunc) { sv.source = f }

// Run starts every state's workers, the router, and the work source, and
// blocks until ctx is canceled and every worker has drained.
func (sv *Supervisor) Run(ctx context.Context) error {
	sv.mu.RLock()
	if sv.source == nil || len(sv.states) == 0 {
		sv.mu.RUnlock()
		return ErrNotConfigured
	}

	total := uint(0)
	for _, s := range sv.states {
		total += s.GoCount
		for i := uint(0); i < s.GoCount; i++ {
			sv.workerWG.Add(1)
			go func(s *State) {
				defer sv.workerWG.Done()
				s.worker(ctx, sv.router, sv.retired)
			}(s)
		}
	}
	sv.mu.RUnlock()

	go sv.route(ctx)
	go sv.generate(ctx)

	<-ctx.Done()
	sv.workerWG.Wait()
	sv.sugar.Infow("checker stopped")
	return nil
}

func (sv *Supervisor) route(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case r := <-sv.router:
			sv.mu.RLock()
			next, ok := sv.states[r.Next]
			sv.mu.RUnlock()
			if !ok {
				sv.sugar.Errorw("no such state", "next", r.Next, "round", r)
				continue
			}
			next.Push(r)
		}
	}
}

func (sv *Supervisor) generate(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			r, err := sv.source()
			if err != nil {
				sv.sugar.Errorw("source failed", "error", err)
				continue
			}
			if r.Next == "" {
				continue
			}
			sv.mu.RLock()
			next, ok := sv.states[r.Next]
			sv.mu.RUnlock()
			if !ok {
				sv.sugar.Errorw("no such state", "next", r.Next, "round", r)
				continue
			}
			next.Push(r)
		}
	}
}
