package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{BaseURL: server.URL, Model: "test-model"}, zap.NewNop())
}

func TestClient_Categorize(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)

		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.False(t, req.Stream)
		require.Len(t, req.Messages, 2)
		assert.Contains(t, req.Messages[1].Content, "- milk")

		_ = json.NewEncoder(w).Encode(ChatResponse{
			Model: "test-model",
			Done:  true,
			Message: ChatMessage{
				Role:    "assistant",
				Content: `[{"ingredient":"milk","category":"Dairy"}]`,
			},
		})
	})

	got, err := client.Categorize(context.Background(), []string{"milk"})

	require.NoError(t, err)
	assert.Equal(t, []outbound.CategoryAssignment{{Ingredient: "milk", Category: "Dairy"}}, got)
}

func TestClient_Categorize_ServerError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	})

	_, err := client.Categorize(context.Background(), []string{"milk"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestClient_Categorize_Incomplete(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ChatResponse{Done: false})
	})

	_, err := client.Categorize(context.Background(), []string{"milk"})

	assert.Error(t, err)
}

func TestClient_Categorize_NoItems(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1"}, zap.NewNop())

	got, err := client.Categorize(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClient_HealthCheck(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	assert.NoError(t, client.HealthCheck(context.Background()))
	assert.Equal(t, "ollama", client.Name())
}
