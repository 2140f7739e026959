package annotations

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/fanoo2/backend/internal/application"
	domai "github.com/fanoo2/backend/internal/domain/ai"
	domain "github.com/fanoo2/backend/internal/domain/annotation"
	"github.com/fanoo2/backend/internal/infra/ai/prompt"
	"github.com/fanoo2/backend/internal/logger"
)

const (
	defaultMaxInputLength = 10000
	defaultProviderName   = "OpenAI"
	defaultStoreTimeout   = 5 * time.Second
	defaultRecentLimit    = 10
	maxRecentLimit        = 100
)

// Service runs the annotation pipeline: AI first, rule-based fallback,
// best-effort persistence. It is safe for concurrent use.
type Service struct {
	// AI may be nil, in which case every call takes the basic path.
	AI   domai.Annotator
	Repo domain.Repository
	// Archive is optional; Export fails with ErrArchiveDisabled without it.
	Archive domain.Archive
	Clock   application.Clock
	Log     *logger.Logger

	MaxInputLength int
	ProviderName   string
	StoreTimeout   time.Duration
}

// Response is what callers see. Method is kept out of the JSON body.
type Response struct {
	Annotations []string      `json:"annotations"`
	Method      domain.Method `json:"-"`
}

// FallbackNotice is prepended to basic results so callers can see degradation.
func FallbackNotice(provider string) string {
	return fmt.Sprintf("Note: Using basic analysis (%s unavailable)", provider)
}

// Annotate validates text, annotates it and logs the outcome. Only a
// *domain.ValidationError is ever returned.
func (s *Service) Annotate(ctx context.Context, text string) (Response, error) {
	if err := s.validate(text); err != nil {
		return Response{}, err
	}
	log := logger.From(ctx, s.logger())

	method := domain.MethodAI
	var anns []string
	var aiErr error
	if s.AI == nil {
		aiErr = domai.ErrNotConfigured
	} else {
		anns, aiErr = s.AI.Annotate(ctx, text)
	}
	if aiErr != nil {
		log.Warn().Err(aiErr).Msg("ai annotation failed, falling back to basic analysis")
		basic := prompt.BasicAnnotations(text)
		anns = make([]string, 0, len(basic)+1)
		anns = append(anns, FallbackNotice(s.providerName()))
		anns = append(anns, basic...)
		method = domain.MethodBasic
	}

	s.persist(ctx, domain.NewRecord(text, anns, method, s.now()))

	return Response{Annotations: anns, Method: method}, nil
}

// Limit is the effective maximum input length in code points.
func (s *Service) Limit() int {
	if s.MaxInputLength <= 0 {
		return defaultMaxInputLength
	}
	return s.MaxInputLength
}

func (s *Service) validate(text string) error {
	if text == "" {
		return &domain.ValidationError{
			Code:   domain.CodeInvalidText,
			Reason: "text field is required and must be a non-empty string",
		}
	}
	max := s.Limit()
	if n := utf8.RuneCountInString(text); n > max {
		return &domain.ValidationError{
			Code:         domain.CodeTextTooLong,
			Reason:       fmt.Sprintf("text length %d exceeds maximum of %d characters", n, max),
			MaxLength:    max,
			ActualLength: n,
		}
	}
	return nil
}

// persist appends on a context detached from the caller so a client
// disconnect cannot cut a write in half. Failures are logged only.
func (s *Service) persist(ctx context.Context, rec *domain.Record) {
	timeout := s.StoreTimeout
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	log := logger.From(ctx, s.logger())
	id, err := s.Repo.Append(storeCtx, rec)
	if err != nil {
		log.Error().Err(err).Msg("failed to log annotation to store")
		return
	}
	log.Debug().
		Int64("record_id", int64(id)).
		Str("method", string(rec.Result.AnalysisMethod)).
		Int("annotation_count", rec.Result.AnnotationCount).
		Msg("annotation stored")
}

// Recent returns the newest records first.
func (s *Service) Recent(ctx context.Context, limit int) ([]*domain.Record, error) {
	return s.Repo.ListRecent(ctx, NormalizeLimit(limit))
}

// Export uploads the most recent records as one JSON document and returns its URL.
func (s *Service) Export(ctx context.Context, limit int) (string, error) {
	if s.Archive == nil {
		return "", domain.ErrArchiveDisabled
	}
	records, err := s.Repo.ListRecent(ctx, NormalizeLimit(limit))
	if err != nil {
		return "", fmt.Errorf("list annotations: %w", err)
	}
	if records == nil {
		records = []*domain.Record{}
	}

	now := s.now()
	doc, err := json.Marshal(map[string]any{
		"exportedAt": now,
		"count":      len(records),
		"records":    records,
	})
	if err != nil {
		return "", fmt.Errorf("marshal export: %w", err)
	}

	key := fmt.Sprintf("annotations/%s/%s.json", now.Format("2006/01/02"), uuid.NewString())
	url, err := s.Archive.PutJSON(ctx, key, doc)
	if err != nil {
		return "", fmt.Errorf("upload export: %w", err)
	}
	return url, nil
}

// NormalizeLimit applies the listing default and cap.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultRecentLimit
	}
	if limit > maxRecentLimit {
		return maxRecentLimit
	}
	return limit
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return application.SystemClock{}.Now()
	}
	return s.Clock.Now()
}

func (s *Service) providerName() string {
	if s.ProviderName == "" {
		return defaultProviderName
	}
	return s.ProviderName
}

func (s *Service) logger() *logger.Logger {
	if s.Log == nil {
		return logger.Named("annotations")
	}
	return s.Log
}
