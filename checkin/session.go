package checkin

import (
	"context"
	"errors"
	"sync"
)

var ErrSessionStopped = errors.New("scan session stopped")

// Session verifies a stream of scans against one selected booking. Each scan
// is verified to completion before the next one is read.
type Session struct {
	verifier   *Verifier
	selectedID int64

	scans    chan string
	verdicts chan Verdict
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

func (v *Verifier) StartSession(ctx context.Context, selectedID int64) *Session {
	ctx, cancel := context.WithCancel(ctx)

	s := &Session{
		verifier:   v,
		selectedID: selectedID,
		scans:      make(chan string),
		verdicts:   make(chan Verdict),
		cancel:     cancel,
		done:       make(chan struct{}),
	}

	go s.run(ctx)

	return s
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)
	defer close(s.verdicts)

	for {
		select {
		case <-ctx.Done():
			return
		case raw := <-s.scans:
			verdict := s.verifier.Check(ctx, raw, s.selectedID)

			select {
			case s.verdicts <- verdict:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Submit hands a raw scan to the loop. It blocks until the loop accepts it,
// the session stops or ctx is done.
func (s *Session) Submit(ctx context.Context, raw string) error {
	select {
	case s.scans <- raw:
		return nil
	case <-s.done:
		return ErrSessionStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Verdicts is closed once the loop exits.
func (s *Session) Verdicts() <-chan Verdict {
	return s.verdicts
}

func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Stop cancels any in-progress verification and waits for the loop to exit.
func (s *Session) Stop() {
	s.stopOnce.Do(s.cancel)
	<-s.done
}
