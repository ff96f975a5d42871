package techstack

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
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
CREATE TABLE IF NOT EXISTS tech_stack_records (
  project_id TEXT PRIMARY KEY,
  frontend JSONB NOT NULL DEFAULT '[]',
  backend JSONB NOT NULL DEFAULT '[]',
  database_options JSONB NOT NULL DEFAULT '[]',
  infrastructure JSONB NOT NULL DEFAULT '[]',
  third_party JSONB NOT NULL DEFAULT '[]',
  rationale JSONB NOT NULL DEFAULT '{}',
  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
`)
	})
	return s.schemaErr
}

func (s *PostgresStore) FindByProject(ctx context.Context, projectID string) (Record, bool, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return Record{}, false, err
	}
	row := s.db.QueryRowContext(ctx, `
SELECT project_id, frontend, backend, database_options, infrastructure,
       third_party, rationale, updated_at
FROM tech_stack_records WHERE project_id = $1`, projectID)

	var rec Record
	var frontend, backend, database, infra, third, rationale []byte
	err := row.Scan(&rec.ProjectID, &frontend, &backend, &database, &infra, &third, &rationale, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	_ = json.Unmarshal(frontend, &rec.Frontend)
	_ = json.Unmarshal(backend, &rec.Backend)
	_ = json.Unmarshal(database, &rec.Database)
	_ = json.Unmarshal(infra, &rec.Infrastructure)
	_ = json.Unmarshal(third, &rec.ThirdParty)
	_ = json.Unmarshal(rationale, &rec.Rationale)
	return rec, true, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, rec Record) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	cols := []struct {
		name string
		v    any
	}{
		{"frontend", rec.Frontend},
		{"backend", rec.Backend},
		{"database_options", rec.Database},
		{"infrastructure", rec.Infrastructure},
		{"third_party", rec.ThirdParty},
		{"rationale", rec.Rationale},
	}
	args := []any{rec.ProjectID}
	for _, c := range cols {
		b, err := json.Marshal(c.v)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", c.name, err)
		}
		args = append(args, b)
	}
	args = append(args, rec.UpdatedAt)

	_, err := s.db.ExecContext(ctx, `
INSERT INTO tech_stack_records (
  project_id, frontend, backend, database_options, infrastructure,
  third_party, rationale, updated_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (project_id)
DO UPDATE SET frontend=EXCLUDED.frontend,
  backend=EXCLUDED.backend,
  database_options=EXCLUDED.database_options,
  infrastructure=EXCLUDED.infrastructure,
  third_party=EXCLUDED.third_party,
  rationale=EXCLUDED.rationale,
  updated_at=EXCLUDED.updated_at`, args...)
	return err
}
