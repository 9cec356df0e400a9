package assets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whopgen/internal/logger"
	"whopgen/internal/models"
	"whopgen/internal/services/openai"
)

type stubContent struct {
	mu         sync.Mutex
	imageSizes []string
	textCalls  int

	imageErrFor string // size whose generation fails
	textErr     error
}

func (s *stubContent) GenerateImage(_ context.Context, prompt, size string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imageSizes = append(s.imageSizes, size)
	if s.imageErrFor == size {
		return "", errors.New("boom")
	}
	return "https://images.example/" + size, nil
}

func (s *stubContent) GenerateText(_ context.Context, prompt string, maxChars int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.textCalls++
	if s.textErr != nil {
		return "", s.textErr
	}
	return fmt.Sprintf("text-%d", maxChars), nil
}

func TestGenerator_Generate(t *testing.T) {
	content := &stubContent{}
	g := New(content, logger.New("error"))

	generated, err := g.Generate(context.Background(), "DOGE")
	require.NoError(t, err)

	assert.Equal(t, "https://images.example/"+openai.SizeSquare, generated.LogoImageURL)
	assert.Equal(t, "https://images.example/"+openai.SizeWide, generated.BannerImageURL)
	assert.Equal(t, "text-0", generated.DescriptionText)
	assert.Equal(t, "text-60", generated.BoldClaimText)
	assert.Equal(t, "text-30", generated.TitleText)

	assert.ElementsMatch(t, []string{openai.SizeSquare, openai.SizeWide}, content.imageSizes)
	assert.Equal(t, 3, content.textCalls)
}

func TestGenerator_Generate_ImageFailureAborts(t *testing.T) {
	content := &stubContent{imageErrFor: openai.SizeWide}
	g := New(content, logger.New("error"))

	_, err := g.Generate(context.Background(), "DOGE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "banner generation")
}

func TestGenerator_Generate_TextFailureAborts(t *testing.T) {
	content := &stubContent{textErr: errors.New("rate limited")}
	g := New(content, logger.New("error"))

	_, err := g.Generate(context.Background(), "DOGE")
	require.Error(t, err)
}

func TestGenerator_Materialize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/logo":
			w.Write([]byte("logo-bytes"))
		case "/banner":
			w.Write([]byte("banner-bytes"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	g := New(&stubContent{}, logger.New("error"))

	generated := models.GeneratedAssets{
		LogoImageURL:   server.URL + "/logo",
		BannerImageURL: server.URL + "/banner",
	}

	materialized, err := g.Materialize(context.Background(), generated)
	require.NoError(t, err)
	assert.Equal(t, []byte("logo-bytes"), materialized.LogoBytes)
	assert.Equal(t, []byte("banner-bytes"), materialized.BannerBytes)
	assert.Equal(t, generated, materialized.GeneratedAssets)
}

func TestGenerator_Materialize_MissingURLSkips(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("logo-bytes"))
	}))
	defer server.Close()

	g := New(&stubContent{}, logger.New("error"))

	materialized, err := g.Materialize(context.Background(), models.GeneratedAssets{
		LogoImageURL: server.URL + "/logo",
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("logo-bytes"), materialized.LogoBytes)
	assert.Empty(t, materialized.BannerBytes)
}

func TestGenerator_Materialize_DownloadFailureAborts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer server.Close()

	g := New(&stubContent{}, logger.New("error"))

	_, err := g.Materialize(context.Background(), models.GeneratedAssets{
		LogoImageURL:   server.URL + "/logo",
		BannerImageURL: server.URL + "/banner",
	})
	require.Error(t, err)
}
