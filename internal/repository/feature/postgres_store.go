package feature

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresStore struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS feature_records (
  id TEXT PRIMARY KEY,
  project_id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  user_story TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL,
  priority TEXT NOT NULL,
  complexity INTEGER NOT NULL DEFAULT 1,
  effort TEXT NOT NULL DEFAULT 'M',
  user_persona TEXT NOT NULL DEFAULT '',
  dependencies JSONB NOT NULL DEFAULT '[]',
  success_metrics JSONB NOT NULL DEFAULT '[]',
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_feature_records_project_id ON feature_records (project_id);
`)
	})
	return s.schemaErr
}

func (s *PostgresStore) ListByProject(ctx context.Context, projectID string) ([]Record, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, project_id, name, description, user_story, category, priority,
       complexity, effort, user_persona, dependencies, success_metrics, created_at
FROM feature_records WHERE project_id = $1 ORDER BY category, priority, name`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var deps, metrics []byte
		if err := rows.Scan(&rec.ID, &rec.ProjectID, &rec.Name, &rec.Description, &rec.UserStory,
			&rec.Category, &rec.Priority, &rec.Complexity, &rec.Effort, &rec.UserPersona,
			&deps, &metrics, &rec.CreatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(deps, &rec.Dependencies)
		_ = json.Unmarshal(metrics, &rec.SuccessMetrics)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ReplaceForProject deletes then inserts inside one transaction so a failed
// insert does not leave the project without its previous features.
func (s *PostgresStore) ReplaceForProject(ctx context.Context, projectID string, recs []Record) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM feature_records WHERE project_id = $1`, projectID); err != nil {
		return fmt.Errorf("delete features: %w", err)
	}
	for _, rec := range recs {
		deps, err := json.Marshal(rec.Dependencies)
		if err != nil {
			return fmt.Errorf("marshal dependencies: %w", err)
		}
		metrics, err := json.Marshal(rec.SuccessMetrics)
		if err != nil {
			return fmt.Errorf("marshal success_metrics: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO feature_records (
  id, project_id, name, description, user_story, category, priority,
  complexity, effort, user_persona, dependencies, success_metrics, created_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
			rec.ID, rec.ProjectID, rec.Name, rec.Description, rec.UserStory,
			rec.Category, rec.Priority, rec.Complexity, rec.Effort, rec.UserPersona,
			deps, metrics, rec.CreatedAt); err != nil {
			return fmt.Errorf("insert feature %q: %w", rec.Name, err)
		}
	}
	return tx.Commit()
}
