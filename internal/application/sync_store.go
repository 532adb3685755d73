package application

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/agentdeck/agentdeck/internal/domain"
	"github.com/agentdeck/agentdeck/internal/ports"
)

const (
	scopeProjects = "projects"
	scopeStatus   = "status"
)

// SyncStore owns the local cache of projects, agents and messages and keeps
// it reconciled against the gateway. All cache mutation happens under one
// mutex, so each operation's apply step is atomic with respect to every
// other. Fetch and poll results are tagged with a sequence number taken at
// dispatch time and a result is discarded when a newer result for the same
// scope already landed, so slow responses cannot roll the cache backwards.
//
// Failures never reach the cache: a failed fetch leaves its slice exactly as
// it was, and only CheckConnection and PollStatus touch the connectivity
// flag. Callers get the error back and decide whether to surface it.
type SyncStore struct {
	remote ports.RemoteClient
	cache  ports.CacheStore
	clock  ports.Clock
	newID  func() domain.MessageID

	mu        sync.Mutex
	projects  []domain.Project
	agents    map[domain.ProjectID][]domain.Agent
	messages  map[domain.AgentID][]domain.Message
	pending   map[domain.AgentID][]domain.Message
	connected bool
	loading   bool
	applied   map[string]uint64

	onSendError func(msg domain.Message, err error)

	seq   atomic.Uint64
	sends sync.WaitGroup

	pollMu     sync.Mutex
	pollCancel context.CancelFunc
	pollDone   chan struct{}
}

// NewSyncStore builds a store around a RemoteClient. cache may be nil to
// skip persistence; clock may be nil for the system clock. Each store is an
// independent instance with its own cache; nothing is process-global.
func NewSyncStore(remote ports.RemoteClient, cache ports.CacheStore, clock ports.Clock) *SyncStore {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &SyncStore{
		remote:   remote,
		cache:    cache,
		clock:    clock,
		newID:    func() domain.MessageID { return domain.MessageID(uuid.NewString()) },
		agents:   map[domain.ProjectID][]domain.Agent{},
		messages: map[domain.AgentID][]domain.Message{},
		pending:  map[domain.AgentID][]domain.Message{},
		applied:  map[string]uint64{},
	}
}

// SetOnSendError registers a callback invoked (outside the store lock) after
// a background message persist fails. The optimistic message stays in the
// pending set either way. Safe to call while sends are in flight.
func (s *SyncStore) SetOnSendError(fn func(msg domain.Message, err error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSendError = fn
}

func scopeAgents(id domain.ProjectID) string { return "agents/" + string(id) }
func scopeMessages(id domain.AgentID) string { return "messages/" + string(id) }

// claim records that a result dispatched with token is being applied to
// scope, unless a newer dispatch already landed there. Caller holds mu.
func (s *SyncStore) claim(scope string, token uint64) bool {
	if token < s.applied[scope] {
		return false
	}
	s.applied[scope] = token
	return true
}

// FetchProjects replaces the whole project collection with the gateway's
// list. On failure the cache is untouched and the error is returned; the
// connectivity flag is not consulted or changed.
func (s *SyncStore) FetchProjects(ctx context.Context) error {
	token := s.seq.Add(1)

	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	projects, err := s.remote.ListProjects(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		return fmt.Errorf("fetch projects: %w", err)
	}
	if !s.claim(scopeProjects, token) {
		return nil
	}
	s.projects = projects
	return nil
}

// FetchAgents replaces one project's agent slice wholesale. Live fields
// already learned from polling are carried forward by agent identity so the
// replace cannot regress them to unknown.
func (s *SyncStore) FetchAgents(ctx context.Context, projectID domain.ProjectID) error {
	token := s.seq.Add(1)

	agents, err := s.remote.ListAgents(ctx, projectID)
	if err != nil {
		return fmt.Errorf("fetch agents for %s: %w", projectID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.claim(scopeAgents(projectID), token) {
		return nil
	}

	prev := map[domain.AgentID]domain.Agent{}
	for _, a := range s.agents[projectID] {
		prev[a.ID] = a
	}
	for i := range agents {
		if p, ok := prev[agents[i].ID]; ok {
			agents[i].CarryLiveFrom(p)
		}
	}
	s.agents[projectID] = agents
	return nil
}

// FetchMessages replaces one agent's confirmed message slice wholesale.
// Pending optimistic messages whose IDs appear in the fetched slice are
// confirmed and dropped from the pending set; the rest stay pending and
// remain visible, so a refetch cannot shadow an unconfirmed send.
func (s *SyncStore) FetchMessages(ctx context.Context, agentID domain.AgentID) error {
	token := s.seq.Add(1)

	messages, err := s.remote.ListMessages(ctx, agentID)
	if err != nil {
		return fmt.Errorf("fetch messages for %s: %w", agentID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.claim(scopeMessages(agentID), token) {
		return nil
	}

	s.messages[agentID] = messages

	confirmed := map[domain.MessageID]bool{}
	for _, m := range messages {
		confirmed[m.ID] = true
	}
	var still []domain.Message
	for _, m := range s.pending[agentID] {
		if !confirmed[m.ID] {
			still = append(still, m)
		}
	}
	if len(still) == 0 {
		delete(s.pending, agentID)
	} else {
		s.pending[agentID] = still
	}
	return nil
}

// SendMessage appends a user message to the agent's pending set immediately
// and persists it to the gateway in the background. The append always
// succeeds; a persist failure is reported through the send-error callback
// and the message is neither rolled back nor marked, keeping the
// at-least-once, fire-and-forget contract.
func (s *SyncStore) SendMessage(ctx context.Context, agentID domain.AgentID, projectID domain.ProjectID, text string) domain.Message {
	msg := domain.Message{
		ID:        s.newID(),
		AgentID:   agentID,
		Role:      domain.RoleUser,
		Text:      text,
		Timestamp: s.clock.Now(),
	}

	s.mu.Lock()
	s.pending[agentID] = append(s.pending[agentID], msg)
	s.mu.Unlock()

	// The persist outlives the caller's context: a send is never canceled
	// mid-flight.
	bg := context.WithoutCancel(ctx)
	s.sends.Add(1)
	go func() {
		defer s.sends.Done()
		if err := s.remote.SendMessage(bg, agentID, projectID, text); err != nil {
			s.mu.Lock()
			report := s.onSendError
			s.mu.Unlock()
			if report != nil {
				report(msg, err)
			}
			return
		}
		s.confirm(msg)
	}()

	return msg
}

// confirm moves an optimistic message from the pending set into the
// confirmed slice once the gateway accepted it. A fetch may already have
// confirmed (or superseded) it, in which case there is nothing to do.
func (s *SyncStore) confirm(msg domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue := s.pending[msg.AgentID]
	for i, m := range queue {
		if m.ID == msg.ID {
			s.messages[msg.AgentID] = append(s.messages[msg.AgentID], m)
			queue = append(queue[:i], queue[i+1:]...)
			if len(queue) == 0 {
				delete(s.pending, msg.AgentID)
			} else {
				s.pending[msg.AgentID] = queue
			}
			return
		}
	}
}

// CheckConnection probes the gateway and records the result. Probe failure
// maps to a false flag, never to an error.
func (s *SyncStore) CheckConnection(ctx context.Context) bool {
	ok, err := s.remote.HealthCheck(ctx)
	up := err == nil && ok

	s.mu.Lock()
	s.connected = up
	s.mu.Unlock()
	return up
}

// Restore seeds the cache from the persisted snapshot. Intended for startup,
// before any fetch; it does not consult freshness tokens.
func (s *SyncStore) Restore(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	snap, err := s.cache.Load(ctx)
	if err != nil {
		return fmt.Errorf("restore cache: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = snap.Projects
	if snap.Agents != nil {
		s.agents = snap.Agents
	}
	if snap.Messages != nil {
		s.messages = snap.Messages
	}
	return nil
}

// Persist writes the current cache (confirmed entries only, pending sends
// excluded) to the snapshot store.
func (s *SyncStore) Persist(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	s.mu.Lock()
	snap := ports.CacheSnapshot{
		Projects: append([]domain.Project(nil), s.projects...),
		Agents:   map[domain.ProjectID][]domain.Agent{},
		Messages: map[domain.AgentID][]domain.Message{},
	}
	for id, agents := range s.agents {
		snap.Agents[id] = append([]domain.Agent(nil), agents...)
	}
	for id, messages := range s.messages {
		snap.Messages[id] = append([]domain.Message(nil), messages...)
	}
	s.mu.Unlock()

	if err := s.cache.Save(ctx, snap); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	return nil
}

// Close stops polling and drains in-flight background sends. The store must
// not be used afterwards.
func (s *SyncStore) Close() {
	s.StopPolling()

	s.pollMu.Lock()
	done := s.pollDone
	s.pollMu.Unlock()
	if done != nil {
		<-done
	}

	s.sends.Wait()
}

// Projects returns a copy of the cached project list in display order.
func (s *SyncStore) Projects() []domain.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Project(nil), s.projects...)
}

// AgentsForProject returns a copy of the cached agent slice for a project.
func (s *SyncStore) AgentsForProject(projectID domain.ProjectID) []domain.Agent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Agent(nil), s.agents[projectID]...)
}

// MessagesForAgent returns the confirmed messages for an agent with any
// pending optimistic messages appended after them.
func (s *SyncStore) MessagesForAgent(agentID domain.AgentID) []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := append([]domain.Message(nil), s.messages[agentID]...)
	return append(out, s.pending[agentID]...)
}

// Connected reports the last observed gateway connectivity.
func (s *SyncStore) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Loading reports whether a project fetch is in flight.
func (s *SyncStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}
