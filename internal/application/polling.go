package application

import (
	"context"
	"fmt"
	"time"

	"github.com/agentdeck/agentdeck/internal/domain"
)

// DefaultPollInterval is the status poll cadence used when StartPolling is
// given a non-positive interval.
const DefaultPollInterval = 2 * time.Second

// PollStatus fetches the consolidated status snapshot and reconciles it into
// the cache. On success connectivity goes true, each cached project named in
// the snapshot gets its two derived counters overwritten, and each cached
// agent named in the snapshot gets its live fields merged in place. Snapshot
// entries with no cached counterpart are ignored; polling never creates
// entities. On failure connectivity goes false and the cache is untouched.
// Applying the same snapshot twice leaves the cache as after the first
// apply.
func (s *SyncStore) PollStatus(ctx context.Context) error {
	token := s.seq.Add(1)

	snap, err := s.remote.GetStatus(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.connected = false
		return fmt.Errorf("poll status: %w", err)
	}

	s.connected = true
	if !s.claim(scopeStatus, token) {
		return nil
	}
	s.applySnapshot(snap)
	return nil
}

// applySnapshot merges one status snapshot into the cache. Caller holds mu.
func (s *SyncStore) applySnapshot(snap domain.StatusSnapshot) {
	for _, ps := range snap.Projects {
		for i := range s.projects {
			if s.projects[i].ID == ps.ID {
				s.projects[i].AgentCount = len(ps.Agents)
				s.projects[i].ActiveAgentCount = ps.ActiveAgents()
				break
			}
		}

		agents := s.agents[ps.ID]
		for _, as := range ps.Agents {
			for i := range agents {
				if agents[i].ID == as.ID {
					agents[i].ApplyStatus(as)
					break
				}
			}
		}
	}
}

// StartPolling restarts the recurring status poll. Any previous poll loop is
// canceled first, one poll is issued immediately so the caller does not wait
// a full interval for fresh data, and a ticker then drives one PollStatus
// per interval until StopPolling. The loop's polls run on a context detached
// from ctx's cancellation: stopping only prevents future ticks, it never
// cuts off an in-flight call.
func (s *SyncStore) StartPolling(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	s.StopPolling()

	base := context.WithoutCancel(ctx)
	loopCtx, cancel := context.WithCancel(base)
	done := make(chan struct{})

	s.pollMu.Lock()
	s.pollCancel = cancel
	s.pollDone = done
	s.pollMu.Unlock()

	_ = s.PollStatus(ctx)

	go s.pollLoop(loopCtx, base, interval, done)
}

func (s *SyncStore) pollLoop(loopCtx, callCtx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-loopCtx.Done():
			return
		case <-ticker.C:
			_ = s.PollStatus(callCtx)
		}
	}
}

// StopPolling cancels the recurring poll, if any. Safe to call repeatedly
// and when polling was never started.
func (s *SyncStore) StopPolling() {
	s.pollMu.Lock()
	defer s.pollMu.Unlock()

	if s.pollCancel != nil {
		s.pollCancel()
		s.pollCancel = nil
	}
}
