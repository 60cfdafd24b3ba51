package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/m5cents/call-screening-backend/internal/domain/classification"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	defaultModel   = "claude-3-haiku-20240307"
	apiVersion     = "2023-06-01"

	// The request deadline sits well under the provider's webhook
	// response deadline; exceeding it is a failure, not a slow path.
	defaultTimeout = 4 * time.Second

	defaultMaxTokens   = 150
	defaultTemperature = 0.1
)

const promptTemplate = `Analyze the following caller's message: '%s' Classify the message's intent into one of the following categories: [Sales, Support, Personal, Urgent, Spam]. Provide a concise, one-sentence summary of the request. Respond ONLY with a valid JSON object in the format: { "category": "...", "summary": "..." }`

// Config holds the settings for the Anthropic-backed classifier.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// AnthropicClassifier calls the Anthropic messages API once per
// utterance. No retries: the latency budget of a live call does not
// tolerate a second attempt, so a single failed request is terminal for
// that call and yields the default result.
type AnthropicClassifier struct {
	client      *http.Client
	logger      *slog.Logger
	apiKey      string
	model       string
	baseURL     string
	maxTokens   int
	temperature float64
}

// NewAnthropicClassifier creates a classifier with bounded request timeout.
func NewAnthropicClassifier(cfg Config, logger *slog.Logger) *AnthropicClassifier {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = defaultTemperature
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &AnthropicClassifier{
		client:      &http.Client{Timeout: cfg.Timeout},
		logger:      logger,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type analysisPayload struct {
	Category string `json:"category"`
	Summary  string `json:"summary"`
}

// Classify sends a single classification request and validates the
// structured result. Any transport failure, non-2xx status, malformed
// body, or schema-invalid payload yields the safe default.
func (a *AnthropicClassifier) Classify(ctx context.Context, text string) classification.Result {
	result, err := a.classify(ctx, text)
	if err != nil {
		a.logger.Warn("caller message classification failed, using default",
			"error", err)
		return classification.DefaultResult()
	}
	return result
}

func (a *AnthropicClassifier) classify(ctx context.Context, text string) (classification.Result, error) {
	reqBody := messagesRequest{
		Model:       a.model,
		MaxTokens:   a.maxTokens,
		Temperature: a.temperature,
		Messages: []message{
			{Role: "user", Content: fmt.Sprintf(promptTemplate, text)},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return classification.Result{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return classification.Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", a.apiKey)
	req.Header.Set("Anthropic-Version", apiVersion)

	resp, err := a.client.Do(req)
	if err != nil {
		return classification.Result{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return classification.Result{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return classification.Result{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var parsed messagesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return classification.Result{}, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Content) == 0 {
		return classification.Result{}, fmt.Errorf("response has no content blocks")
	}

	var analysis analysisPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(parsed.Content[0].Text)), &analysis); err != nil {
		return classification.Result{}, fmt.Errorf("decode analysis payload: %w", err)
	}

	if analysis.Category == "" || analysis.Summary == "" {
		return classification.Result{}, fmt.Errorf("analysis payload missing category or summary")
	}

	category, err := classification.ParseCategory(analysis.Category)
	if err != nil {
		return classification.Result{}, fmt.Errorf("category %q outside classification set", analysis.Category)
	}

	return classification.Result{Category: category, Summary: analysis.Summary}, nil
}
