package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "  I'm here with you.  "}},
			},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL, "", 5*time.Second)
	out, err := client.Chat(context.Background(), []Message{
		{Role: "system", Content: "You are Truly Twin."},
		{Role: "user", Content: "I had a hard day."},
	})
	require.NoError(t, err)
	assert.Equal(t, "I'm here with you.", out)
}

func TestChatAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "rate limit reached"},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL, "", 5*time.Second)
	_, err := client.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	assert.ErrorContains(t, err, "rate limit reached")
}

func TestChatUnconfigured(t *testing.T) {
	client := NewClient("", "", "", 0)
	_, err := client.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFences(`{"a":1}`))
}
