package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const ollamaSystemPrompt = `You are an expert on GDPR and data protection law.
You analyze a company's reply to a data deletion or access request.
Respond with a single JSON object and nothing else:
{
  "category": "confirmed|completed|rejected|partial|needs_clarification|other",
  "summary": "one-sentence summary of the reply",
  "action_required": true,
  "confidence": 0.0
}
"confirmed" means the company acknowledged the request and is processing it.
"completed" means the request has been fulfilled.
Replies may be in German or English.`

// OllamaClassifier reads replies with a local language model through the
// Ollama HTTP API. Any failure (unreachable host, malformed output, unknown
// category) falls back to the keyword classifier, so callers always get a
// usable classification.
type OllamaClassifier struct {
	host     string
	model    string
	client   *http.Client
	fallback Classifier
	logger   *slog.Logger
}

// NewOllamaClassifier creates a classifier against the given Ollama host
// (e.g. http://localhost:11434)
func NewOllamaClassifier(host, model string, logger *slog.Logger) *OllamaClassifier {
	return &OllamaClassifier{
		host:     strings.TrimRight(host, "/"),
		model:    model,
		client:   &http.Client{Timeout: 120 * time.Second},
		fallback: NewKeywordClassifier(),
		logger:   logger,
	}
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Classify asks the model to categorize the reply
func (o *OllamaClassifier) Classify(ctx context.Context, text, language string) (*Classification, error) {
	result, err := o.generate(ctx, text, language)
	if err != nil {
		o.logger.Warn("model classification failed, using keyword fallback", "error", err)
		return o.fallback.Classify(ctx, text, language)
	}

	parsed, err := parseModelOutput(result)
	if err != nil {
		o.logger.Warn("unparseable model output, using keyword fallback", "error", err)
		return o.fallback.Classify(ctx, text, language)
	}
	return parsed, nil
}

// Available reports whether the Ollama host answers at all
func (o *OllamaClassifier) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.host+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (o *OllamaClassifier) generate(ctx context.Context, text, language string) (string, error) {
	prompt := fmt.Sprintf("Reply language hint: %s\n\nCompany reply:\n%s\n\nAnalysis (JSON):", language, text)
	payload, err := json.Marshal(generateRequest{
		Model:   o.model,
		Prompt:  prompt,
		System:  ollamaSystemPrompt,
		Stream:  false,
		Options: map[string]any{"temperature": 0.3},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.host+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", fmt.Errorf("failed to decode ollama response: %w", err)
	}
	return gr.Response, nil
}

// parseModelOutput extracts the JSON object from the model's text. Models
// routinely wrap the JSON in prose, so everything outside the outermost
// braces is discarded.
func parseModelOutput(output string) (*Classification, error) {
	start := strings.Index(output, "{")
	end := strings.LastIndex(output, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in model output")
	}

	var raw struct {
		Category       string  `json:"category"`
		Summary        string  `json:"summary"`
		ActionRequired bool    `json:"action_required"`
		Confidence     float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(output[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON in model output: %w", err)
	}

	cat := normalizeCategory(raw.Category)
	if !cat.Valid() {
		return nil, fmt.Errorf("unknown category %q in model output", raw.Category)
	}

	c := &Classification{
		Category:       cat,
		Confidence:     raw.Confidence,
		Summary:        raw.Summary,
		ActionRequired: raw.ActionRequired,
	}
	if status, ok := SuggestedStatusFor(cat); ok {
		c.SuggestedStatus = status
	}
	return c, nil
}

// normalizeCategory accepts the aliases older prompt versions produced
func normalizeCategory(s string) Category {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "acknowledged":
		return CategoryConfirmed
	case "needs_info", "needs-clarification":
		return CategoryNeedsClarification
	case "unknown":
		return CategoryOther
	default:
		return Category(strings.ToLower(strings.TrimSpace(s)))
	}
}
