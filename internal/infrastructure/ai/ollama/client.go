// Package ollama provides Ollama integration for local AI inference
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/alchemorsel/pantry/internal/infrastructure/ai/prompt"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the address of a local Ollama server
	DefaultBaseURL = "http://localhost:11434"
	// DefaultModel is a small model suitable for categorization
	DefaultModel = "llama3.2:3b"
)

// Client implements outbound.Categorizer using the Ollama chat API
type Client struct {
	baseURL     string
	model       string
	temperature float64
	client      *http.Client
	logger      *zap.Logger
}

// Config configures the Ollama client
type Config struct {
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// NewClient creates a new Ollama client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger.Info("Ollama client initialized",
		zap.String("base_url", cfg.BaseURL),
		zap.String("model", cfg.Model),
		zap.Duration("timeout", cfg.Timeout))

	return &Client{
		baseURL:     cfg.BaseURL,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.Named("ollama-client"),
	}
}

var _ outbound.Categorizer = (*Client)(nil)

// Ollama API structures
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model    string                 `json:"model"`
	Messages []ChatMessage          `json:"messages"`
	Stream   bool                   `json:"stream"`
	Format   string                 `json:"format,omitempty"`
	Options  map[string]interface{} `json:"options,omitempty"`
}

type ChatResponse struct {
	Model         string      `json:"model"`
	Message       ChatMessage `json:"message"`
	Done          bool        `json:"done"`
	TotalDuration int64       `json:"total_duration,omitempty"`
	EvalCount     int         `json:"eval_count,omitempty"`
	EvalDuration  int64       `json:"eval_duration,omitempty"`
}

// Name returns the provider name
func (c *Client) Name() string {
	return "ollama"
}

// HealthCheck verifies the Ollama service is available
func (c *Client) HealthCheck(ctx context.Context) error {
	endpoint := c.baseURL + "/api/tags"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama health check failed with status %d", resp.StatusCode)
	}
	return nil
}

// Categorize asks the model to assign a category to each item
func (c *Client) Categorize(ctx context.Context, items []string) ([]outbound.CategoryAssignment, error) {
	if len(items) == 0 {
		return []outbound.CategoryAssignment{}, nil
	}

	content, err := c.generateChatCompletion(ctx, prompt.SystemPrompt, prompt.UserPrompt(items))
	if err != nil {
		c.logger.Error("Ollama chat completion failed", zap.Error(err))
		return nil, err
	}

	assignments, err := prompt.ParseAssignments(content)
	if err != nil {
		c.logger.Error("Failed to parse Ollama response", zap.Error(err))
		return nil, err
	}

	c.logger.Debug("Items categorized via Ollama",
		zap.Int("items", len(items)),
		zap.Int("assignments", len(assignments)))
	return assignments, nil
}

func (c *Client) generateChatCompletion(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	endpoint := c.baseURL + "/api/chat"

	reqBody := ChatRequest{
		Model: c.model,
		Messages: []ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Stream: false,
		Format: "json",
		Options: map[string]interface{}{
			"temperature": c.temperature,
			"num_ctx":     4096,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !chatResp.Done {
		return "", fmt.Errorf("incomplete response from Ollama")
	}

	c.logger.Debug("Ollama chat completion successful",
		zap.String("model", chatResp.Model),
		zap.Int64("eval_duration", chatResp.EvalDuration),
		zap.Int("eval_count", chatResp.EvalCount))

	return chatResp.Message.Content, nil
}
