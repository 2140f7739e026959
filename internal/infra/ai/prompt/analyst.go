package prompt

// GetSystemPrompt describes the analysis dimensions and the strict JSON shape
// the model has to answer with.
func GetSystemPrompt() string {
	return `You are an expert text analyzer for the Fanno AI platform. Analyze the provided text and return annotations as a JSON object. Focus on:

1. Technical complexity and readability
2. Platform-specific terminology (AI, agents, workflows, automation, orchestration)
3. Sentiment and tone analysis
4. Action items and requirements identification
5. Technical concepts and frameworks mentioned
6. Code quality indicators if code is present
7. Security or compliance considerations if relevant

Requirements:
- Output must be a single JSON object only (no markdown, no commentary, no code fences).
- Order annotations from most to least important.
- Keep annotations concise but informative. Focus on actionable insights.

Schema:
{
  "annotations": [
    "annotation1",
    "annotation2",
    "annotation3"
  ]
}`
}

// Completion is the JSON object the model is asked to return.
type Completion struct {
	Annotations []string `json:"annotations"`
}
