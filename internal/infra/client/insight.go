// Package client contains HTTP clients for external services.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Manan1014/ssas-go/internal/domain"
	"github.com/Manan1014/ssas-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("client")

// InsightClient calls an OpenAI-style chat completions API to turn a
// trend summary into a short narrative insight.
type InsightClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
}

// NewInsightClient creates a new InsightClient.
func NewInsightClient(httpClient *http.Client, baseURL, apiKey, model string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *InsightClient {
	return &InsightClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		cb:         cb,
		cfg:        cfg,
	}
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Generate sends the prompt and returns the completion text plus token
// usage. Failures come back typed so callers can degrade gracefully.
func (c *InsightClient) Generate(ctx context.Context, prompt string) (*domain.InsightCompletion, error) {
	ctx, span := tracer.Start(ctx, "InsightClient.Generate")
	defer span.End()
	span.SetAttributes(attribute.String("model", c.model))

	var chatResp chatResponse

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			body, err := json.Marshal(chatRequest{
				Model: c.model,
				Messages: []chatMessage{
					{Role: "user", Content: prompt},
				},
				MaxTokens: 150,
			})
			if err != nil {
				return err
			}

			url := fmt.Sprintf("%s/v1/chat/completions", c.baseURL)
			httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
			if err != nil {
				return err
			}
			httpReq.Header.Set("Content-Type", "application/json")
			httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

			resp, err := c.httpClient.Do(httpReq)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("completions API returned status %d", resp.StatusCode)
			}

			return json.NewDecoder(resp.Body).Decode(&chatResp)
		})
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &domain.ErrCircuitOpen{Service: "openai"}
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &domain.ErrTimeout{Operation: "insight generation"}
		}
		return nil, &domain.ErrExternalService{Service: "openai", Err: err}
	}

	if len(chatResp.Choices) == 0 {
		return nil, &domain.ErrExternalService{
			Service: "openai",
			Err:     errors.New("empty completion response"),
		}
	}

	return &domain.InsightCompletion{
		Text:             strings.TrimSpace(chatResp.Choices[0].Message.Content),
		PromptTokens:     chatResp.Usage.PromptTokens,
		CompletionTokens: chatResp.Usage.CompletionTokens,
	}, nil
}
