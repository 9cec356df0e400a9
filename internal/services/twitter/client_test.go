package twitter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whopgen/internal/logger"
)

func TestClient_FetchMentions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, mentionsPath, r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		assert.Equal(t, "csrf", r.Header.Get("X-Csrf-Token"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"globalObjects": map[string]interface{}{
				"tweets": map[string]interface{}{
					"1": map[string]string{"id_str": "111", "full_text": "@GenerateWhop $DOGE"},
					"2": map[string]string{"id_str": "222", "full_text": "hello"},
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "Bearer token", "cookie", "csrf", logger.New("error"))

	events, err := client.FetchMentions(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)

	byID := map[string]string{}
	for _, e := range events {
		byID[e.ID] = e.RawText
		assert.False(t, e.ObservedAt.IsZero())
	}
	assert.Equal(t, "@GenerateWhop $DOGE", byID["111"])
	assert.Equal(t, "hello", byID["222"])
}

func TestClient_FetchMentions_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "t", "c", "x", logger.New("error"))

	_, err := client.FetchMentions(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestClient_Reply(t *testing.T) {
	var gotReq createTweetRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, createTweetPath, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "Bearer token", "cookie", "csrf", logger.New("error"))

	err := client.Reply(context.Background(), "111", "https://whop.com/doge-7/")
	require.NoError(t, err)

	assert.Equal(t, "Here's your WHOP! https://whop.com/doge-7/", gotReq.Variables.TweetText)
	assert.Equal(t, "111", gotReq.Variables.Reply.InReplyToTweetID)
	assert.NotNil(t, gotReq.Variables.Reply.ExcludeReplyUserIDs)
	assert.Equal(t, createTweetID, gotReq.QueryID)
	assert.NotEmpty(t, gotReq.Features)
}

func TestClient_Reply_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(server.URL, "t", "c", "x", logger.New("error"))

	err := client.Reply(context.Background(), "111", "https://whop.com/doge-7/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
