package domain

import "time"

type AgentID string

const (
	AgentStatusIdle     = "idle"
	AgentStatusWorking  = "working"
	AgentStatusFinished = "finished"
)

// Agent is a cached agent record. Title, Description, flags and Status come
// from ListAgents; IsThinking, Focus and SessionRunning are live fields that
// stay nil until the first status poll reports them and are then merged in
// place field by field, never replacing the rest of the record.
type Agent struct {
	ID          AgentID
	ProjectID   ProjectID
	Title       string
	Description string
	IsDefault   bool
	IsFinished  bool
	Status      string
	CreatedAt   time.Time

	IsThinking     *bool
	Focus          *string
	SessionRunning *bool
}

// ApplyStatus merges one status report into the agent, touching only the
// live fields. Reapplying the same report is a no-op, so status applies are
// idempotent.
func (a *Agent) ApplyStatus(st AgentStatus) {
	if st.IsThinking != nil {
		v := *st.IsThinking
		a.IsThinking = &v
	}
	if st.Focus != nil {
		v := *st.Focus
		a.Focus = &v
	}
	if st.SessionRunning != nil {
		v := *st.SessionRunning
		a.SessionRunning = &v
	}
}

// CarryLiveFrom copies the live fields of a previously cached record into a
// freshly fetched one, so a wholesale agent-list replace cannot bury newer
// poll data under unknown live state.
func (a *Agent) CarryLiveFrom(prev Agent) {
	if a.IsThinking == nil && prev.IsThinking != nil {
		v := *prev.IsThinking
		a.IsThinking = &v
	}
	if a.Focus == nil && prev.Focus != nil {
		v := *prev.Focus
		a.Focus = &v
	}
	if a.SessionRunning == nil && prev.SessionRunning != nil {
		v := *prev.SessionRunning
		a.SessionRunning = &v
	}
}

// Thinking reports the live thinking flag, treating unknown as false.
func (a Agent) Thinking() bool {
	return a.IsThinking != nil && *a.IsThinking
}
