package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// FailureKind classifies scoring-service failures for logging and for
// the credential-invalidation decision. Every kind resolves to the
// same recovery: the deterministic keyword fallback.
type FailureKind string

const (
	FailureAuth      FailureKind = "auth"
	FailureRateLimit FailureKind = "rate_limit"
	FailureQuota     FailureKind = "quota"
	FailureTransport FailureKind = "transport"
	FailureMalformed FailureKind = "malformed"
)

// ScoringError wraps a scoring-service failure with its classified
// cause.
type ScoringError struct {
	Kind FailureKind
	Err  error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ScoringError) Unwrap() error { return e.Err }

// Classify extracts the FailureKind from an error returned by the
// scoring client, defaulting to transport.
func Classify(err error) FailureKind {
	var se *ScoringError
	if errors.As(err, &se) {
		return se.Kind
	}
	return FailureTransport
}

// ErrNoCredential marks the no-key case so callers can fall back
// without logging it as an upstream failure.
var ErrNoCredential = errors.New("no scoring credential configured")

// OpenAIClient is a minimal chat-completions client for the external
// scoring service. Any OpenAI-compatible endpoint works via BaseURL.
type OpenAIClient struct {
	BaseURL string
	Model   string
	Client  *http.Client
	Creds   *Credentials
}

func NewOpenAIClient(baseURL, model string, creds *Credentials) *OpenAIClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		Client:  &http.Client{Timeout: 30 * time.Second},
		Creds:   creds,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Complete sends one user prompt and returns the raw completion text.
// Failures come back as *ScoringError so callers can classify them.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	key := ""
	if c.Creds != nil {
		key = c.Creds.Get()
	}
	if key == "" {
		return "", ErrNoCredential
	}

	reqBody := chatRequest{
		Model:       c.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.2,
		MaxTokens:   maxTokens,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", &ScoringError{Kind: FailureMalformed, Err: fmt.Errorf("marshaling request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", &ScoringError{Kind: FailureTransport, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", &ScoringError{Kind: FailureTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
		return "", classifyStatus(resp.StatusCode, string(snippet))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &ScoringError{Kind: FailureMalformed, Err: fmt.Errorf("decoding response: %w", err)}
	}
	if len(parsed.Choices) == 0 {
		return "", &ScoringError{Kind: FailureMalformed, Err: fmt.Errorf("response has no choices")}
	}

	return parsed.Choices[0].Message.Content, nil
}

func classifyStatus(status int, body string) *ScoringError {
	err := fmt.Errorf("API returned %d: %.120s", status, body)
	switch {
	case status == http.StatusUnauthorized || strings.Contains(body, "invalid_api_key"):
		return &ScoringError{Kind: FailureAuth, Err: err}
	case strings.Contains(body, "insufficient_quota"):
		return &ScoringError{Kind: FailureQuota, Err: err}
	case status == http.StatusTooManyRequests:
		return &ScoringError{Kind: FailureRateLimit, Err: err}
	default:
		return &ScoringError{Kind: FailureTransport, Err: err}
	}
}

// stripFences removes markdown code fences models sometimes wrap
// around JSON output.
func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		if idx := strings.Index(raw, "\n"); idx >= 0 {
			raw = raw[idx+1:]
		} else {
			raw = strings.TrimPrefix(raw, "```")
		}
	}
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
	return strings.TrimSpace(raw)
}
