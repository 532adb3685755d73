package domain

// StatusSnapshot is the consolidated live-status payload returned by the
// gateway's status endpoint: per project, the agents the gateway currently
// knows about and their live fields. Snapshot entries that do not match a
// cached project or agent are ignored by the store; only explicit fetches
// create entities.
type StatusSnapshot struct {
	Projects []ProjectStatus
}

type ProjectStatus struct {
	ID     ProjectID
	Agents []AgentStatus
}

type AgentStatus struct {
	ID             AgentID
	IsThinking     *bool
	Focus          *string
	SessionRunning *bool
}

// ActiveAgents counts the agents the snapshot reports as thinking.
func (p ProjectStatus) ActiveAgents() int {
	n := 0
	for _, a := range p.Agents {
		if a.IsThinking != nil && *a.IsThinking {
			n++
		}
	}
	return n
}
