package ai

import "context"

// Annotator produces ordered, human-readable insights about a text.
type Annotator interface {
	Annotate(ctx context.Context, text string) ([]string, error)
}
