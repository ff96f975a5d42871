package validation

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
CREATE TABLE IF NOT EXISTS validation_records (
  idea_id TEXT PRIMARY KEY,
  market_potential INTEGER NOT NULL DEFAULT 0,
  differentiation_opportunities JSONB NOT NULL DEFAULT '[]',
  risks JSONB NOT NULL DEFAULT '[]',
  similar_products JSONB NOT NULL DEFAULT '[]',
  improvement_suggestions JSONB NOT NULL DEFAULT '[]',
  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
`)
	})
	return s.schemaErr
}

func (s *PostgresStore) FindByIdea(ctx context.Context, ideaID string) (Record, bool, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return Record{}, false, err
	}
	row := s.db.QueryRowContext(ctx, `
SELECT idea_id, market_potential, differentiation_opportunities, risks,
       similar_products, improvement_suggestions, updated_at
FROM validation_records WHERE idea_id = $1`, ideaID)

	var rec Record
	var diffs, risks, similar, improvements []byte
	err := row.Scan(&rec.IdeaID, &rec.MarketPotential, &diffs, &risks, &similar, &improvements, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	_ = json.Unmarshal(diffs, &rec.DifferentiationOpportunities)
	_ = json.Unmarshal(risks, &rec.Risks)
	_ = json.Unmarshal(similar, &rec.SimilarProducts)
	_ = json.Unmarshal(improvements, &rec.ImprovementSuggestions)
	return rec, true, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, rec Record) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	diffs, err := json.Marshal(rec.DifferentiationOpportunities)
	if err != nil {
		return fmt.Errorf("marshal differentiation_opportunities: %w", err)
	}
	risks, err := json.Marshal(rec.Risks)
	if err != nil {
		return fmt.Errorf("marshal risks: %w", err)
	}
	similar, err := json.Marshal(rec.SimilarProducts)
	if err != nil {
		return fmt.Errorf("marshal similar_products: %w", err)
	}
	improvements, err := json.Marshal(rec.ImprovementSuggestions)
	if err != nil {
		return fmt.Errorf("marshal improvement_suggestions: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO validation_records (
  idea_id, market_potential, differentiation_opportunities, risks,
  similar_products, improvement_suggestions, updated_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (idea_id)
DO UPDATE SET market_potential=EXCLUDED.market_potential,
  differentiation_opportunities=EXCLUDED.differentiation_opportunities,
  risks=EXCLUDED.risks,
  similar_products=EXCLUDED.similar_products,
  improvement_suggestions=EXCLUDED.improvement_suggestions,
  updated_at=EXCLUDED.updated_at`,
		rec.IdeaID, rec.MarketPotential, diffs, risks, similar, improvements, rec.UpdatedAt)
	return err
}
