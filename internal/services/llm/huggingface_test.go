package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHuggingFaceComplete(t *testing.T) {
	var gotAuth string
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		_, _ = w.Write([]byte(`[{"generated_text": "because of weak earnings"}]`))
	}))
	defer server.Close()

	provider := NewHuggingFaceProvider(server.URL, "hf-token")

	text, err := provider.Complete(context.Background(), "why short Eni?")
	require.NoError(t, err)

	assert.Equal(t, "Bearer hf-token", gotAuth)
	assert.Equal(t, "why short Eni?", gotBody["inputs"])
	assert.Contains(t, text, "weak earnings")
}

func TestHuggingFaceCompleteNonOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	provider := NewHuggingFaceProvider(server.URL, "hf-token")

	_, err := provider.Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestHuggingFaceProviderType(t *testing.T) {
	provider := NewHuggingFaceProvider("https://example.com", "token")
	assert.Equal(t, ProviderHuggingFace, provider.GetProviderType())
}
