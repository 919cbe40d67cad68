package cheatsheet

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/lib/pq"
)

const cheatsheetColumns = `id, video_id, processing_status, needed_topics, language, structured, content, sections, error, comment, created_at, updated_at`

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func scanCheatsheet(row interface{ Scan(...any) error }) (*Cheatsheet, error) {
	var c Cheatsheet
	var language, content, errMsg, comment sql.NullString
	var sections []byte
	err := row.Scan(
		&c.ID, &c.VideoID, &c.ProcessingStatus, pq.Array(&c.NeededTopics),
		&language, &c.Structured, &content, &sections, &errMsg, &comment,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Language = language.String
	c.Content = content.String
	c.Error = errMsg.String
	c.Comment = comment.String
	if len(sections) > 0 {
		if err := json.Unmarshal(sections, &c.Sections); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

func (r *PostgresRepo) Save(ctx context.Context, c *Cheatsheet) error {
	query := `
		INSERT INTO cheatsheets (video_id, processing_status, needed_topics, language, structured, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query,
		c.VideoID, c.ProcessingStatus, pq.Array(c.NeededTopics), c.Language, c.Structured, c.Comment,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (*Cheatsheet, error) {
	query := `SELECT ` + cheatsheetColumns + ` FROM cheatsheets WHERE id = $1`
	return scanCheatsheet(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepo) List(ctx context.Context, videoID string) ([]Cheatsheet, error) {
	query := `SELECT ` + cheatsheetColumns + ` FROM cheatsheets`
	args := []any{}
	if videoID != "" {
		query += ` WHERE video_id = $1`
		args = append(args, videoID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sheets := []Cheatsheet{}
	for rows.Next() {
		c, err := scanCheatsheet(rows)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, *c)
	}
	return sheets, rows.Err()
}

func (r *PostgresRepo) UpdateStatus(ctx context.Context, id string, status ProcessingStatus) error {
	query := `UPDATE cheatsheets SET processing_status = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, status, id)
	return err
}

func (r *PostgresRepo) UpdateResult(ctx context.Context, id, content string, sections map[string]any) error {
	var sectionsJSON []byte
	if sections != nil {
		var err error
		sectionsJSON, err = json.Marshal(sections)
		if err != nil {
			return err
		}
	}
	query := `UPDATE cheatsheets SET processing_status = $1, content = $2, sections = $3, error = '', updated_at = NOW() WHERE id = $4`
	_, err := r.db.ExecContext(ctx, query, StatusDone, content, sectionsJSON, id)
	return err
}

func (r *PostgresRepo) UpdateFailure(ctx context.Context, id, errMsg string) error {
	query := `UPDATE cheatsheets SET processing_status = $1, error = $2, updated_at = NOW() WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, StatusFailed, errMsg, id)
	return err
}

func (r *PostgresRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cheatsheets`).Scan(&count)
	return count, err
}
