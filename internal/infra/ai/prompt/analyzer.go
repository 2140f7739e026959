package prompt

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Fixed vocabularies for the rule-based annotator. Order is the output order.
var (
	TechnicalTerms = []string{
		"API", "SDK", "OpenAPI", "microservice", "database", "authentication", "authorization",
		"JWT", "OAuth", "REST", "GraphQL", "docker", "kubernetes", "cloud", "deployment",
		"typescript", "javascript", "react", "node", "express", "webhook", "endpoint",
	}
	PlatformTerms = []string{"agent", "workflow", "automation", "AI", "platform", "orchestration", "integration"}
	PositiveWords = []string{"good", "great", "excellent", "amazing", "perfect", "successful", "efficient"}
	NegativeWords = []string{"bad", "terrible", "awful", "failed", "error", "broken", "issue"}
	ActionWords   = []string{"should", "must", "need to", "required", "implement", "create", "build", "deploy"}
)

const (
	complexSentenceWords = 20
	simpleSentenceWords  = 10
)

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// BasicAnnotations is the offline annotator: deterministic, never fails and
// always returns at least the word-count line and one sentiment line.
func BasicAnnotations(text string) []string {
	annotations := make([]string, 0, 6)
	lower := strings.ToLower(text)

	words := len(strings.Fields(text))
	sentences := 0
	for _, s := range sentenceSplit.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			sentences++
		}
	}
	divisor := sentences
	if divisor == 0 {
		divisor = 1
	}
	avg := int(math.Round(float64(words) / float64(divisor)))

	annotations = append(annotations, fmt.Sprintf("Text contains %d words across %d sentences", words, sentences))

	switch {
	case avg > complexSentenceWords:
		annotations = append(annotations, "Complex sentence structure detected - consider breaking into shorter sentences")
	case avg < simpleSentenceWords:
		annotations = append(annotations, "Simple sentence structure - good for readability")
	}

	if found := matchTerms(lower, TechnicalTerms); len(found) > 0 {
		annotations = append(annotations, "Technical concepts identified: "+strings.Join(found, ", "))
	}
	if found := matchTerms(lower, PlatformTerms); len(found) > 0 {
		annotations = append(annotations, "Platform-related content detected: "+strings.Join(found, ", "))
	}

	positive := len(matchTerms(lower, PositiveWords))
	negative := len(matchTerms(lower, NegativeWords))
	switch {
	case positive > negative:
		annotations = append(annotations, "Positive tone detected")
	case negative > positive:
		annotations = append(annotations, "Negative tone detected - may require attention")
	default:
		annotations = append(annotations, "Neutral tone")
	}

	if len(matchTerms(lower, ActionWords)) > 0 {
		annotations = append(annotations, "Action items or requirements identified")
	}

	return annotations
}

// matchTerms returns the vocabulary entries found in lower (already lowercased),
// keeping vocabulary casing and order.
func matchTerms(lower string, vocabulary []string) []string {
	var found []string
	for _, term := range vocabulary {
		if strings.Contains(lower, strings.ToLower(term)) {
			found = append(found, term)
		}
	}
	return found
}
