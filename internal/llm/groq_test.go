package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGroq(url string) *groqClient {
	c := NewGroqClient("test-key", "llama-test", 0.2).(*groqClient)
	c.baseURL = url
	return c
}

func TestGroqGenerateContent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "llama-test", body["model"])

		w.Write([]byte(`{
			"model": "llama-test",
			"choices": [{"message": {"content": "{\"name\": \"Push Day\"}"}}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 7, "total_tokens": 19}
		}`))
	}))
	defer ts.Close()

	resp, err := newTestGroq(ts.URL).GenerateContent(context.Background(), "make a workout")
	require.NoError(t, err)
	assert.Equal(t, `{"name": "Push Day"}`, resp.Content)
	assert.Equal(t, 12, resp.Usage.PromptTokens)
	assert.Equal(t, 7, resp.Usage.CompletionTokens)
	assert.Equal(t, "llama-test", resp.Usage.Model)
}

func TestGroqGenerateContentErrors(t *testing.T) {
	t.Run("StatusError", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte("slow down"))
		}))
		defer ts.Close()

		_, err := newTestGroq(ts.URL).GenerateContent(context.Background(), "hi")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status=429")
	})

	t.Run("NoChoices", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices": []}`))
		}))
		defer ts.Close()

		_, err := newTestGroq(ts.URL).GenerateContent(context.Background(), "hi")
		require.EqualError(t, err, "no content generated")
	})
}
