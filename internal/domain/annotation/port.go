package annotation

import "context"

// Repository is the append-only annotation log.
// Append must be safe for concurrent use and assign unique, increasing ids.
type Repository interface {
	Append(ctx context.Context, r *Record) (RecordID, error)
	ListRecent(ctx context.Context, limit int) ([]*Record, error)
}

// Archive stores exported documents in object storage and returns their URL.
type Archive interface {
	PutJSON(ctx context.Context, key string, data []byte) (string, error)
}
