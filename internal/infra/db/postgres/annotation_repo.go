package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	domain "github.com/fanoo2/backend/internal/domain/annotation"
)

type AnnotationRepository struct {
	db *sql.DB
}

func NewAnnotationRepository(db *sql.DB) *AnnotationRepository {
	return &AnnotationRepository{db: db}
}

// Append inserts a record; the BIGSERIAL column hands out the id.
func (r *AnnotationRepository) Append(ctx context.Context, rec *domain.Record) (domain.RecordID, error) {
	const q = `
INSERT INTO annotations (input_text, result_json, created_at)
VALUES ($1, $2, $3)
RETURNING id;`

	result, err := json.Marshal(rec.Result)
	if err != nil {
		return 0, fmt.Errorf("marshal result: %w", err)
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var id int64
	if err := r.db.QueryRowContext(ctx, q, rec.InputText, string(result), createdAt).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert annotation: %w", err)
	}
	rec.ID = domain.RecordID(id)
	return rec.ID, nil
}

// ListRecent returns newest first
func (r *AnnotationRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Record, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `
SELECT id, input_text, result_json, created_at
FROM annotations
ORDER BY created_at DESC, id DESC
LIMIT $1;`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Record
	for rows.Next() {
		var rec domain.Record
		var id int64
		var raw []byte
		if err := rows.Scan(&id, &rec.InputText, &raw, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &rec.Result); err != nil {
			return nil, fmt.Errorf("decode annotation %d: %w", id, err)
		}
		rec.ID = domain.RecordID(id)
		out = append(out, &rec)
	}
	return out, rows.Err()
}
