package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/onshop/prodvec/internal/domain"
	"github.com/onshop/prodvec/internal/metrics"
)

// rewriteInstruction tells the model to emit a structured query: free tokens
// followed by exactly three numeric tokens (category id, budget, count).
// The shape gate downstream decides whether the model obeyed.
const rewriteInstruction = `You rewrite shopping requests into a structured search query.
Output a single line of space-separated tokens describing the product intent,
ending with exactly three integer tokens: category id, budget in won, desired item count.
Output nothing else.`

// rerankInstruction asks for a JSON array so the response can be decoded
// directly into recommendations.
const rerankInstruction = `You rank candidate products for a shopping request.
Given candidate product ids and the original request, reply with a JSON array only.
Each element: {"product_id": <id>, "attributes": {"reason": "<short reason>"}}.
Order the array from best to worst match. Use only the given ids.`

// ChatClient implements domain.QueryRewriter and domain.Reranker over the
// OpenAI-compatible chat completions API.
type ChatClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// ChatConfig holds the chat provider settings.
type ChatConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewChatClient creates an OpenAI-compatible chat provider.
func NewChatClient(cfg *ChatConfig) *ChatClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &ChatClient{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: timeout,
		logger:  cfg.Logger,
	}
}

// RewriteQuery implements domain.QueryRewriter. The raw model output is
// returned as-is; shape validation happens downstream.
func (c *ChatClient) RewriteQuery(ctx context.Context, freeText string) (string, error) {
	out, err := c.complete(ctx, "rewrite", rewriteInstruction, freeText)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Rerank implements domain.Reranker. Preserves the model's ordering.
func (c *ChatClient) Rerank(
	ctx context.Context, candidateIDs []int64, originalQuery string,
) ([]domain.Recommendation, error) {
	ids := make([]string, len(candidateIDs))
	for i, id := range candidateIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}

	user := fmt.Sprintf("candidate ids: [%s]\nrequest: %s", strings.Join(ids, ", "), originalQuery)

	out, err := c.complete(ctx, "rerank", rerankInstruction, user)
	if err != nil {
		return nil, err
	}

	recs, err := parseRecommendations(out)
	if err != nil {
		return nil, fmt.Errorf("parse rerank response: %w: %w", err, domain.ErrChatProviderError)
	}
	return recs, nil
}

func (c *ChatClient) complete(ctx context.Context, op, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})

	duration := time.Since(start)

	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues(c.model, op, "error").Inc()
		return "", parseAPIError(err, domain.ErrChatProviderError)
	}

	if len(resp.Choices) == 0 {
		metrics.ChatRequestsTotal.WithLabelValues(c.model, op, "error").Inc()
		return "", fmt.Errorf("empty chat response: %w", domain.ErrChatProviderError)
	}

	metrics.ChatRequestsTotal.WithLabelValues(c.model, op, "success").Inc()
	metrics.ChatRequestDuration.WithLabelValues(c.model, op).Observe(duration.Seconds())

	c.logger.Debug("Chat request completed",
		zap.String("model", c.model),
		zap.String("op", op),
		zap.Duration("duration", duration),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)

	return resp.Choices[0].Message.Content, nil
}

// parseRecommendations decodes the model's JSON array, tolerating markdown
// code fences around it.
func parseRecommendations(out string) ([]domain.Recommendation, error) {
	trimmed := strings.TrimSpace(out)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var recs []domain.Recommendation
	if err := json.Unmarshal([]byte(trimmed), &recs); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	for i, rec := range recs {
		if rec.ProductID == 0 {
			return nil, fmt.Errorf("element %d missing product_id", i)
		}
	}
	return recs, nil
}
