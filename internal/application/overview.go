package application

import "github.com/agentdeck/agentdeck/internal/domain"

// ProjectOverview pairs a cached project with its cached agent slice for
// display.
type ProjectOverview struct {
	Project domain.Project
	Agents  []domain.Agent
}

// Overview is a point-in-time read of the whole cache, safe to hand to a
// renderer while the store keeps mutating.
type Overview struct {
	Connected bool
	Projects  []ProjectOverview
}

// Overview snapshots the cache in display order.
func (s *SyncStore) Overview() Overview {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := Overview{Connected: s.connected}
	for _, p := range s.projects {
		view.Projects = append(view.Projects, ProjectOverview{
			Project: p,
			Agents:  append([]domain.Agent(nil), s.agents[p.ID]...),
		})
	}
	return view
}
