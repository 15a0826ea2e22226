// Package gatelog persists gate evaluation reports so past GO/NO-GO
// decisions stay auditable.
package gatelog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"alphaforge/internal/gate"

	_ "modernc.org/sqlite"
)

// Store manages the gate_reports table.
type Store struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("gatelog store requires a path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, path: path}, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func ensureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS gate_reports (
			id TEXT PRIMARY KEY,
			decision TEXT NOT NULL,
			risk_level TEXT NOT NULL,
			summary TEXT NOT NULL,
			report_json TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_gate_reports_created ON gate_reports(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_gate_reports_decision ON gate_reports(decision);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Insert persists one gate report.
func (s *Store) Insert(ctx context.Context, report gate.Report) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO gate_reports (id, decision, risk_level, summary, report_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		report.ID, string(report.Decision), string(report.RiskLevel), report.Summary,
		string(raw), time.Now().UnixMilli())
	return err
}

// List returns the most recent reports, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]gate.Report, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT report_json FROM gate_reports
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []gate.Report
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var report gate.Report
		if err := json.Unmarshal([]byte(raw), &report); err != nil {
			return nil, err
		}
		out = append(out, report)
	}
	return out, rows.Err()
}

// Get returns one report by ID.
func (s *Store) Get(ctx context.Context, id string) (gate.Report, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT report_json FROM gate_reports WHERE id=?`, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return gate.Report{}, fmt.Errorf("gate report %s not found", id)
	}
	if err != nil {
		return gate.Report{}, err
	}
	var report gate.Report
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return gate.Report{}, err
	}
	return report, nil
}
