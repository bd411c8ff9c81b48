// Package schedule runs one-shot deferred actions keyed by candidate id.
// A pending action can be cancelled, which is how deleting a candidate stops
// a queued interview booking from touching the store afterwards.
package schedule

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/recruit-tracker/internal/utils"
)

type Action func(ctx context.Context)

type task struct {
	seq    uint64
	cancel context.CancelFunc
}

type Scheduler struct {
	mu      sync.Mutex
	pending map[int64]task
	seq     uint64
	wg      sync.WaitGroup
	logger  *zap.Logger

	wait func(ctx context.Context, d time.Duration) error
}

func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		pending: make(map[int64]task),
		logger:  logger,
		wait:    utils.WaitFor,
	}
}

// After runs action once delay has elapsed, unless cancelled first.
// Scheduling an id that already has a pending action replaces it.
func (s *Scheduler) After(id int64, delay time.Duration, action Action) {
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	if prev, ok := s.pending[id]; ok {
		prev.cancel()
		s.logger.Debug("replacing pending action", zap.Int64("candidate_id", id))
	}
	s.seq++
	seq := s.seq
	s.pending[id] = task{seq: seq, cancel: cancel}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer cancel()

		if err := s.wait(ctx, delay); err != nil {
			s.logger.Debug("pending action cancelled", zap.Int64("candidate_id", id))
			return
		}

		s.mu.Lock()
		current, ok := s.pending[id]
		if !ok || current.seq != seq {
			s.mu.Unlock()
			return
		}
		delete(s.pending, id)
		s.mu.Unlock()

		action(ctx)
	}()
}

// Cancel drops the pending action for id. It reports whether one was pending.
func (s *Scheduler) Cancel(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.pending[id]
	if !ok {
		return false
	}
	t.cancel()
	delete(s.pending, id)
	return true
}

func (s *Scheduler) CancelAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.pending)
	for id, t := range s.pending {
		t.cancel()
		delete(s.pending, id)
	}
	return n
}

func (s *Scheduler) Pending(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.pending[id]
	return ok
}

// Wait blocks until every scheduled action has either fired or been cancelled.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
