package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/text-to-speech/voice-123", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("xi-api-key"))

		var req synthesisRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "eleven_multilingual_v2", req.ModelID)
		assert.Equal(t, "sleep now, little one", req.Text)

		w.Write([]byte("mpeg-bytes"))
	}))
	defer srv.Close()

	client := NewClient("secret", srv.URL, "voice-123")
	audio, err := client.Synthesize(context.Background(), "sleep now, little one")
	require.NoError(t, err)
	assert.Equal(t, []byte("mpeg-bytes"), audio)
}

func TestSynthesizeUnconfigured(t *testing.T) {
	client := NewClient("", "", "")
	_, err := client.Synthesize(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSynthesizeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient("secret", srv.URL, "voice-123")
	_, err := client.Synthesize(context.Background(), "anything")
	assert.ErrorContains(t, err, "status 401")
}
