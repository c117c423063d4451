package openai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	domai "github.com/bryanwahyu/medreport-ai/internal/domain/ai"
	"github.com/bryanwahyu/medreport-ai/internal/infra/ai/prompt"
	"github.com/sashabaranov/go-openai"
)

const (
	defaultModel     = "gpt-4o-mini"
	defaultMaxTokens = 2000
	defaultTimeout   = 120 * time.Second

	// one initial call plus one retry on transient failure
	maxAttempts = 2
)

type Client struct {
	*openai.Client
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// NewClient builds the adapter. baseURL may point at any OpenAI-compatible
// backend (self-hosted included); empty uses the official endpoint.
func NewClient(apiKey, baseURL, model string, temperature float32, maxTokens int, timeout time.Duration) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		Client:      openai.NewClientWithConfig(cfg),
		Model:       model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Timeout:     timeout,
	}
}

// Analyze generates the narrative for one report. On backend failure after
// retries it returns the degraded fallback text together with the error; the
// pipeline persists the fallback but must not cache it.
func (c *Client) Analyze(ctx context.Context, req domai.AnalyzeRequest) (string, error) {
	historyDate, historyContent := "", ""
	if req.History != nil {
		historyDate = req.History.ReportDate
		historyContent = req.History.Content
	}
	content := prompt.Analysis(req.Kind, req.Input, historyDate, historyContent)

	text, _, err := c.complete(ctx, content)
	if err != nil {
		if errors.Is(err, domai.ErrQuotaExceeded) {
			return prompt.Degraded, err
		}
		return prompt.Degraded, fmt.Errorf("%w: %v", domai.ErrUnavailable, err)
	}
	return text, nil
}

// Compare runs the explicit multi-report comparison and post-processes the
// raw narrative into sections, key changes and a confidence label.
func (c *Client) Compare(ctx context.Context, req domai.CompareRequest) (*domai.CompareResult, error) {
	currentText := prompt.FormatStored(req.Kind, req.Current)
	historyTexts := make([]string, 0, len(req.History))
	historyDates := make([]string, 0, len(req.History))
	for _, h := range req.History {
		data, _ := h["report_data"].(map[string]any)
		if data == nil {
			data = h
		}
		historyTexts = append(historyTexts, prompt.FormatStored(req.Kind, data))
		date, _ := h["report_date"].(string)
		historyDates = append(historyDates, date)
	}

	content := prompt.Comparison(req.CardNo, req.Kind, req.Period,
		req.CurrentDate, currentText, historyTexts, historyDates)

	text, tokens, err := c.complete(ctx, content)
	if err != nil {
		return nil, err
	}

	trend, risk, recommendations := prompt.Sections(text)
	return &domai.CompareResult{
		Narrative:       text,
		KeyChanges:      prompt.KeyChanges(text),
		TrendAnalysis:   trend,
		RiskAssessment:  risk,
		Recommendations: recommendations,
		Model:           c.model(),
		Confidence:      prompt.Confidence(len(req.History), len(text)),
		TokensUsed:      tokens,
	}, nil
}

// Ping checks that the backend answers at all. Used by the health endpoint;
// kept short so a dead backend degrades the check instead of stalling it.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := c.ListModels(ctx); err != nil {
		return fmt.Errorf("llm backend unreachable: %w", err)
	}
	return nil
}

func (c *Client) model() string {
	if c.Model == "" {
		return defaultModel
	}
	return c.Model
}

// complete performs the chat completion with a bounded per-call timeout and a
// small retry budget for transient errors.
func (c *Client) complete(ctx context.Context, content string) (string, int, error) {
	model := c.model()
	req := openai.ChatCompletionRequest{
		Model:       model,
		Temperature: c.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: content},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = c.MaxTokens
	} else {
		req.MaxTokens = c.MaxTokens
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, c.Timeout)
		resp, err := c.CreateChatCompletion(callCtx, req)
		cancel()
		if err == nil {
			if len(resp.Choices) == 0 {
				lastErr = fmt.Errorf("chat completion returned no choices")
				continue
			}
			return resp.Choices[0].Message.Content, resp.Usage.TotalTokens, nil
		}

		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 429 {
			return "", 0, domai.ErrQuotaExceeded
		}
		lastErr = err
		if attempt < maxAttempts {
			log.Printf("chat completion attempt %d failed, retrying: %v", attempt, err)
		}
	}
	return "", 0, fmt.Errorf("chat completion failed after %d attempts: %w", maxAttempts, lastErr)
}
