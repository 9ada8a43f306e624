// Package gemini provides categorization through Google's Gemini API
package gemini

import (
	"context"
	"fmt"
	"time"

	"github.com/alchemorsel/pantry/internal/infrastructure/ai/prompt"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured
const DefaultModel = "gemini-2.0-flash"

// Client implements outbound.Categorizer on the GenAI SDK
type Client struct {
	client      *genai.Client
	model       string
	temperature float32
	timeout     time.Duration
	logger      *zap.Logger
}

// Config configures the Gemini client
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	Timeout     time.Duration
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	logger.Info("Gemini client initialized", zap.String("model", cfg.Model))

	return &Client{
		client:      client,
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		timeout:     cfg.Timeout,
		logger:      logger.Named("gemini-client"),
	}, nil
}

var _ outbound.Categorizer = (*Client)(nil)

// Name returns the provider name
func (c *Client) Name() string {
	return "gemini"
}

// assignmentSchema constrains the reply to an array of ingredient/category objects
var assignmentSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"ingredient": {Type: genai.TypeString},
			"category":   {Type: genai.TypeString},
		},
		Required: []string{"ingredient", "category"},
	},
}

// Categorize asks the model to assign a category to each item
func (c *Client) Categorize(ctx context.Context, items []string) ([]outbound.CategoryAssignment, error) {
	if len(items) == 0 {
		return []outbound.CategoryAssignment{}, nil
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		genai.Text(prompt.UserPrompt(items)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(prompt.SystemPrompt, genai.RoleUser),
			Temperature:       genai.Ptr(c.temperature),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    assignmentSchema,
		},
	)
	if err != nil {
		c.logger.Error("Gemini generate content failed", zap.Error(err))
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	assignments, err := prompt.ParseAssignments(resp.Text())
	if err != nil {
		c.logger.Error("Failed to parse Gemini response", zap.Error(err))
		return nil, err
	}

	c.logger.Debug("Items categorized via Gemini",
		zap.Int("items", len(items)),
		zap.Int("assignments", len(assignments)))
	return assignments, nil
}
