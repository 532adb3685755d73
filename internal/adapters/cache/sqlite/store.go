// Package sqlite persists the sync store's cache snapshot in a local SQLite
// database so the UI can show last-known state before the gateway answers.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/agentdeck/agentdeck/internal/domain"
	"github.com/agentdeck/agentdeck/internal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	agent_count INTEGER NOT NULL DEFAULT 0,
	active_agent_count INTEGER NOT NULL DEFAULT 0,
	position INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS agents (
	id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	is_default INTEGER NOT NULL DEFAULT 0,
	is_finished INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	is_thinking INTEGER,
	focus TEXT,
	session_running INTEGER,
	position INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	agent_id TEXT NOT NULL,
	role TEXT NOT NULL,
	text TEXT NOT NULL,
	timestamp TIMESTAMP NOT NULL,
	persona TEXT NOT NULL DEFAULT '',
	position INTEGER NOT NULL
);
`

// Store implements ports.CacheStore on SQLite. Save replaces the whole
// snapshot in one transaction; partial writes never survive.
type Store struct {
	db *sql.DB
}

var _ ports.CacheStore = (*Store)(nil)

// Open creates or opens the cache database at path, creating parent
// directories as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize cache schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Save(ctx context.Context, snap ports.CacheSnapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cache save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"projects", "agents", "messages"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, p := range snap.Projects {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO projects (id, name, description, created_at, agent_count, active_agent_count, position) VALUES (?, ?, ?, ?, ?, ?, ?)",
			string(p.ID), p.Name, p.Description, p.CreatedAt, p.AgentCount, p.ActiveAgentCount, i,
		)
		if err != nil {
			return fmt.Errorf("save project %s: %w", p.ID, err)
		}
	}

	for projectID, agents := range snap.Agents {
		for i, a := range agents {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO agents (id, project_id, title, description, is_default, is_finished, status, created_at, is_thinking, focus, session_running, position) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
				string(a.ID), string(projectID), a.Title, a.Description, a.IsDefault, a.IsFinished, a.Status, a.CreatedAt,
				nullBool(a.IsThinking), nullString(a.Focus), nullBool(a.SessionRunning), i,
			)
			if err != nil {
				return fmt.Errorf("save agent %s: %w", a.ID, err)
			}
		}
	}

	for agentID, messages := range snap.Messages {
		for i, m := range messages {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO messages (id, agent_id, role, text, timestamp, persona, position) VALUES (?, ?, ?, ?, ?, ?, ?)",
				string(m.ID), string(agentID), string(m.Role), m.Text, m.Timestamp, m.Persona, i,
			)
			if err != nil {
				return fmt.Errorf("save message %s: %w", m.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cache save: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context) (ports.CacheSnapshot, error) {
	snap := ports.CacheSnapshot{
		Agents:   map[domain.ProjectID][]domain.Agent{},
		Messages: map[domain.AgentID][]domain.Message{},
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, description, created_at, agent_count, active_agent_count FROM projects ORDER BY position")
	if err != nil {
		return snap, fmt.Errorf("load projects: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var p domain.Project
		var id string
		if err := rows.Scan(&id, &p.Name, &p.Description, &p.CreatedAt, &p.AgentCount, &p.ActiveAgentCount); err != nil {
			return snap, fmt.Errorf("scan project: %w", err)
		}
		p.ID = domain.ProjectID(id)
		snap.Projects = append(snap.Projects, p)
	}
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("load projects: %w", err)
	}

	if err := s.loadAgents(ctx, &snap); err != nil {
		return snap, err
	}
	if err := s.loadMessages(ctx, &snap); err != nil {
		return snap, err
	}
	return snap, nil
}

func (s *Store) loadAgents(ctx context.Context, snap *ports.CacheSnapshot) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, project_id, title, description, is_default, is_finished, status, created_at, is_thinking, focus, session_running FROM agents ORDER BY project_id, position")
	if err != nil {
		return fmt.Errorf("load agents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			a              domain.Agent
			id, projectID  string
			isThinking     sql.NullBool
			focus          sql.NullString
			sessionRunning sql.NullBool
		)
		err := rows.Scan(&id, &projectID, &a.Title, &a.Description, &a.IsDefault, &a.IsFinished, &a.Status, &a.CreatedAt,
			&isThinking, &focus, &sessionRunning)
		if err != nil {
			return fmt.Errorf("scan agent: %w", err)
		}
		a.ID = domain.AgentID(id)
		a.ProjectID = domain.ProjectID(projectID)
		if isThinking.Valid {
			a.IsThinking = &isThinking.Bool
		}
		if focus.Valid {
			a.Focus = &focus.String
		}
		if sessionRunning.Valid {
			a.SessionRunning = &sessionRunning.Bool
		}
		snap.Agents[a.ProjectID] = append(snap.Agents[a.ProjectID], a)
	}
	return rows.Err()
}

func (s *Store) loadMessages(ctx context.Context, snap *ports.CacheSnapshot) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, agent_id, role, text, timestamp, persona FROM messages ORDER BY agent_id, position")
	if err != nil {
		return fmt.Errorf("load messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			m           domain.Message
			id, agentID string
			role        string
		)
		if err := rows.Scan(&id, &agentID, &role, &m.Text, &m.Timestamp, &m.Persona); err != nil {
			return fmt.Errorf("scan message: %w", err)
		}
		m.ID = domain.MessageID(id)
		m.AgentID = domain.AgentID(agentID)
		m.Role = domain.MessageRole(role)
		snap.Messages[m.AgentID] = append(snap.Messages[m.AgentID], m)
	}
	return rows.Err()
}

func nullBool(v *bool) sql.NullBool {
	if v == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *v, Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
