package idea

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore backs the idea repository with a database/sql connection
// over the pgx stdlib driver. Reads go through a small LRU keyed by project
// id; writes invalidate it.
type PostgresStore struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error

	byProject *lru.Cache[string, Record]
}

func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	cache, err := lru.New[string, Record](1024)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{db: db, byProject: cache}, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS idea_records (
  id TEXT PRIMARY KEY,
  project_id TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL DEFAULT '',
  target_audience TEXT NOT NULL DEFAULT '',
  problem_statement TEXT NOT NULL DEFAULT '',
  desired_features JSONB NOT NULL DEFAULT '[]',
  technical_preferences JSONB NOT NULL DEFAULT '[]',
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
`)
	})
	return s.schemaErr
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (Record, bool, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return Record{}, false, err
	}
	row := s.db.QueryRowContext(ctx, `
SELECT id, project_id, description, target_audience, problem_statement,
       desired_features, technical_preferences, created_at, updated_at
FROM idea_records WHERE id = $1`, id)
	return scanRecord(row)
}

func (s *PostgresStore) FindByProject(ctx context.Context, projectID string) (Record, bool, error) {
	if rec, ok := s.byProject.Get(projectID); ok {
		return rec, true, nil
	}
	if err := s.ensureSchema(ctx); err != nil {
		return Record{}, false, err
	}
	row := s.db.QueryRowContext(ctx, `
SELECT id, project_id, description, target_audience, problem_statement,
       desired_features, technical_preferences, created_at, updated_at
FROM idea_records WHERE project_id = $1`, projectID)
	rec, ok, err := scanRecord(row)
	if err == nil && ok {
		s.byProject.Add(projectID, rec)
	}
	return rec, ok, err
}

func (s *PostgresStore) Put(ctx context.Context, rec Record) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	features, err := json.Marshal(orEmpty(rec.DesiredFeatures))
	if err != nil {
		return fmt.Errorf("marshal desired_features: %w", err)
	}
	prefs, err := json.Marshal(orEmpty(rec.TechnicalPreferences))
	if err != nil {
		return fmt.Errorf("marshal technical_preferences: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO idea_records (
  id, project_id, description, target_audience, problem_statement,
  desired_features, technical_preferences, created_at, updated_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (project_id)
DO UPDATE SET description=EXCLUDED.description,
  target_audience=EXCLUDED.target_audience,
  problem_statement=EXCLUDED.problem_statement,
  desired_features=EXCLUDED.desired_features,
  technical_preferences=EXCLUDED.technical_preferences,
  updated_at=EXCLUDED.updated_at`,
		rec.ID, rec.ProjectID, rec.Description, rec.TargetAudience, rec.ProblemStatement,
		features, prefs, rec.CreatedAt, rec.UpdatedAt)
	if err == nil {
		s.byProject.Remove(rec.ProjectID)
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, bool, error) {
	var rec Record
	var features, prefs []byte
	err := row.Scan(
		&rec.ID,
		&rec.ProjectID,
		&rec.Description,
		&rec.TargetAudience,
		&rec.ProblemStatement,
		&features,
		&prefs,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	_ = json.Unmarshal(features, &rec.DesiredFeatures)
	_ = json.Unmarshal(prefs, &rec.TechnicalPreferences)
	return rec, true, nil
}

func orEmpty(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}
