package gemini

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), Config{}, zap.NewNop())
	assert.Error(t, err)
}

func TestClient_Categorize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, ":generateContent"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{
				"content": {
					"role": "model",
					"parts": [{"text": "[{\"ingredient\":\"yogurt\",\"category\":\"Dairy\"}]"}]
				},
				"finishReason": "STOP"
			}]
		}`))
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), Config{APIKey: "test-key", BaseURL: server.URL}, zap.NewNop())
	require.NoError(t, err)

	got, err := client.Categorize(context.Background(), []string{"yogurt"})

	require.NoError(t, err)
	assert.Equal(t, []outbound.CategoryAssignment{{Ingredient: "yogurt", Category: "Dairy"}}, got)
	assert.Equal(t, "gemini", client.Name())
}

func TestClient_Categorize_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":500,"message":"internal","status":"INTERNAL"}}`))
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), Config{APIKey: "test-key", BaseURL: server.URL}, zap.NewNop())
	require.NoError(t, err)

	_, err = client.Categorize(context.Background(), []string{"yogurt"})

	assert.Error(t, err)
}
