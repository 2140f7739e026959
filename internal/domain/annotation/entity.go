package annotation

import (
	"time"
	"unicode/utf8"
)

// RecordID identifier type
type RecordID int64

// Method tells which annotator produced a result
type Method string

const (
	MethodAI    Method = "ai"
	MethodBasic Method = "basic"
)

// Result is the stored outcome of one pipeline run.
type Result struct {
	Annotations     []string  `json:"annotations"`
	AnalysisMethod  Method    `json:"analysisMethod"`
	Timestamp       time.Time `json:"timestamp"`
	InputLength     int       `json:"inputLength"`
	AnnotationCount int       `json:"annotationCount"`
}

// Record is an immutable entry of the annotation log
type Record struct {
	ID        RecordID  `json:"id"`
	InputText string    `json:"inputText"`
	Result    Result    `json:"resultJson"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewRecord derives the metrics from input and annotations. The annotation
// slice is copied so later edits by the caller cannot leak into the log.
func NewRecord(input string, annotations []string, method Method, now time.Time) *Record {
	anns := make([]string, len(annotations))
	copy(anns, annotations)
	return &Record{
		InputText: input,
		Result: Result{
			Annotations:     anns,
			AnalysisMethod:  method,
			Timestamp:       now,
			InputLength:     utf8.RuneCountInString(input),
			AnnotationCount: len(anns),
		},
		CreatedAt: now,
	}
}
