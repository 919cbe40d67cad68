package settings

import (
	"context"
	"database/sql"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Get(ctx context.Context) (*Settings, error) {
	s := &Settings{}
	query := `SELECT id, gemini_api_key, model, temperature, max_output_tokens, chunk_size, chunk_overlap, safety_factor FROM settings WHERE id = 1`
	err := r.db.QueryRowContext(ctx, query).Scan(&s.ID, &s.GeminiAPIKey, &s.Model, &s.Temperature, &s.MaxOutputTokens, &s.ChunkSize, &s.ChunkOverlap, &s.SafetyFactor)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *PostgresRepo) Update(ctx context.Context, s *Settings) error {
	query := `
		UPDATE settings
		SET gemini_api_key = $1, model = $2, temperature = $3, max_output_tokens = $4, chunk_size = $5, chunk_overlap = $6, safety_factor = $7, updated_at = NOW()
		WHERE id = 1
	`
	_, err := r.db.ExecContext(ctx, query, s.GeminiAPIKey, s.Model, s.Temperature, s.MaxOutputTokens, s.ChunkSize, s.ChunkOverlap, s.SafetyFactor)
	return err
}
