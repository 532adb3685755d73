package domain

import "time"

type ProjectID string

// Project is a cached project record. AgentCount and ActiveAgentCount are
// live fields: the gateway's status snapshot is their only authoritative
// source and each successful poll overwrites them wholesale.
type Project struct {
	ID               ProjectID
	Name             string
	Description      string
	CreatedAt        time.Time
	AgentCount       int
	ActiveAgentCount int
}
