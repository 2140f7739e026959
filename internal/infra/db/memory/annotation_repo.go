// Package memory holds process-local adapters used when no database is
// configured. Nothing here survives a restart.
package memory

import (
	"context"
	"sync"

	domain "github.com/fanoo2/backend/internal/domain/annotation"
)

type AnnotationRepository struct {
	mu      sync.RWMutex
	nextID  domain.RecordID
	records []*domain.Record
}

func NewAnnotationRepository() *AnnotationRepository {
	return &AnnotationRepository{}
}

// Append assigns the next id under the write lock and stores a copy of r.
func (r *AnnotationRepository) Append(ctx context.Context, rec *domain.Record) (domain.RecordID, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	rec.ID = r.nextID
	cp := *rec
	cp.Result.Annotations = append([]string(nil), rec.Result.Annotations...)
	r.records = append(r.records, &cp)
	return rec.ID, nil
}

// ListRecent returns up to limit records, newest first.
func (r *AnnotationRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > len(r.records) {
		limit = len(r.records)
	}
	out := make([]*domain.Record, 0, limit)
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *r.records[i]
		cp.Result.Annotations = append([]string(nil), cp.Result.Annotations...)
		out = append(out, &cp)
	}
	return out, nil
}

// Len is the number of stored records.
func (r *AnnotationRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
