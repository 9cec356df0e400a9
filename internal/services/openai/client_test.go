package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whopgen/internal/logger"
)

func TestClient_GenerateImage(t *testing.T) {
	var gotReq map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/images/generations", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]string{{"url": "https://images.example/logo.png"}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk-test", logger.New("error"))

	url, err := client.GenerateImage(context.Background(), "a logo", SizeSquare)
	require.NoError(t, err)
	assert.Equal(t, "https://images.example/logo.png", url)

	assert.Equal(t, "dall-e-3", gotReq["model"])
	assert.Equal(t, "a logo", gotReq["prompt"])
	assert.Equal(t, "1024x1024", gotReq["size"])
	assert.Equal(t, "url", gotReq["response_format"])
	assert.Equal(t, float64(1), gotReq["n"])
}

func TestClient_GenerateImage_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"data": []map[string]string{}})
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk-test", logger.New("error"))

	_, err := client.GenerateImage(context.Background(), "a logo", SizeSquare)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no URL")
}

func TestClient_GenerateText_Truncates(t *testing.T) {
	long := strings.Repeat("x", 100)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": long}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk-test", logger.New("error"))

	text, err := client.GenerateText(context.Background(), "a claim", 60)
	require.NoError(t, err)
	assert.Len(t, text, 60)

	// Zero budget means no truncation.
	text, err = client.GenerateText(context.Background(), "a description", 0)
	require.NoError(t, err)
	assert.Len(t, text, 100)
}

func TestClient_GenerateText_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk-test", logger.New("error"))

	_, err := client.GenerateText(context.Background(), "a claim", 60)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
