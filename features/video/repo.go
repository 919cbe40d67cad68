package video

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

const videoColumns = `id, youtube_id, processing_status, title, language, audio_path, transcript_path, main_theme, persona, discussion_topics, created_at, updated_at`

func scanVideo(row interface{ Scan(...any) error }) (*Video, error) {
	v := &Video{}
	var title, language, audioPath, transcriptPath, mainTheme, persona sql.NullString
	err := row.Scan(&v.ID, &v.YoutubeID, &v.ProcessingStatus, &title, &language, &audioPath, &transcriptPath, &mainTheme, &persona, pq.Array(&v.DiscussionTopics), &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	v.Title = title.String
	v.Language = language.String
	v.AudioPath = audioPath.String
	v.TranscriptPath = transcriptPath.String
	v.MainTheme = mainTheme.String
	v.Persona = persona.String
	return v, nil
}

func (r *PostgresRepo) Save(ctx context.Context, v *Video) error {
	query := `INSERT INTO videos (youtube_id, processing_status) VALUES ($1, $2) RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query, v.YoutubeID, v.ProcessingStatus).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (*Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE id = $1`
	return scanVideo(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepo) GetByYoutubeID(ctx context.Context, youtubeID string) (*Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE youtube_id = $1`
	return scanVideo(r.db.QueryRowContext(ctx, query, youtubeID))
}

func (r *PostgresRepo) List(ctx context.Context) ([]Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, *v)
	}
	return videos, rows.Err()
}

func (r *PostgresRepo) UpdateStatus(ctx context.Context, id string, status ProcessingStatus) error {
	query := `UPDATE videos SET processing_status = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, status, id)
	return err
}

func (r *PostgresRepo) UpdateAudioPath(ctx context.Context, id, path string) error {
	query := `UPDATE videos SET audio_path = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, path, id)
	return err
}

func (r *PostgresRepo) UpdateTranscriptPath(ctx context.Context, id, path string) error {
	query := `UPDATE videos SET transcript_path = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, path, id)
	return err
}

func (r *PostgresRepo) UpdateTopics(ctx context.Context, id, mainTheme, persona string, topics []string) error {
	query := `UPDATE videos SET main_theme = $1, persona = $2, discussion_topics = $3, updated_at = NOW() WHERE id = $4`
	_, err := r.db.ExecContext(ctx, query, mainTheme, persona, pq.Array(topics), id)
	return err
}

func (r *PostgresRepo) Exists(ctx context.Context, id string) (bool, error) {
	var found bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM videos WHERE id = $1)`, id).Scan(&found)
	return found, err
}

func (r *PostgresRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM videos`).Scan(&count)
	return count, err
}
