package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"whopgen/internal/logger"
	"whopgen/internal/models"
	"whopgen/internal/services/openai"
)

// Character budgets for the short promotional strings.
const (
	maxClaimChars = 60
	maxTitleChars = 30
)

// ContentClient is the slice of the content service the generator needs.
type ContentClient interface {
	GenerateImage(ctx context.Context, prompt, size string) (string, error)
	GenerateText(ctx context.Context, prompt string, maxChars int) (string, error)
}

type Generator struct {
	content    ContentClient
	httpClient *http.Client
	logger     *logger.Logger
}

func New(content ContentClient, logger *logger.Logger) *Generator {
	return &Generator{
		content: content,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

// Generate fans out the four content-service calls for one subject. There is
// no joint transaction: any call failing aborts the whole request before a
// single commerce-platform call is made.
func (g *Generator) Generate(ctx context.Context, subject string) (models.GeneratedAssets, error) {
	var generated models.GeneratedAssets

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		prompt := fmt.Sprintf("A modern, professional logo for a business about %s. Minimal, clean design.", subject)
		url, err := g.content.GenerateImage(ctx, prompt, openai.SizeSquare)
		if err != nil {
			return fmt.Errorf("logo generation: %w", err)
		}
		generated.LogoImageURL = url
		return nil
	})

	eg.Go(func() error {
		prompt := fmt.Sprintf("A wide banner image representing %s business. Modern, abstract design with subtle branding.", subject)
		url, err := g.content.GenerateImage(ctx, prompt, openai.SizeWide)
		if err != nil {
			return fmt.Errorf("banner generation: %w", err)
		}
		generated.BannerImageURL = url
		return nil
	})

	eg.Go(func() error {
		prompt := fmt.Sprintf("Write a compelling description for a Whop store dedicated to the %s business. Include benefits, features, and a bold claim. Format in markdown.", subject)
		text, err := g.content.GenerateText(ctx, prompt, 0)
		if err != nil {
			return fmt.Errorf("description generation: %w", err)
		}
		generated.DescriptionText = text
		return nil
	})

	eg.Go(func() error {
		prompt := fmt.Sprintf("Write a bold, attention-grabbing one-liner claim for the %s business. Maximum %d characters.", subject, maxClaimChars)
		claim, err := g.content.GenerateText(ctx, prompt, maxClaimChars)
		if err != nil {
			return fmt.Errorf("claim generation: %w", err)
		}
		generated.BoldClaimText = claim

		prompt = fmt.Sprintf("Write a bold, attention-grabbing one-liner title for the %s business. The title should be a single sentence that captures the essence of the business and describes the outcome. Maximum %d characters.", subject, maxTitleChars)
		title, err := g.content.GenerateText(ctx, prompt, maxTitleChars)
		if err != nil {
			return fmt.Errorf("title generation: %w", err)
		}
		generated.TitleText = title
		return nil
	})

	if err := eg.Wait(); err != nil {
		return models.GeneratedAssets{}, err
	}
	return generated, nil
}

// Materialize downloads the generated image URLs into binary payloads. The
// upload target does not accept remote URLs, so this has to happen before
// any upload. The two downloads run concurrently; either failing aborts the
// run. A missing URL yields empty bytes, which downstream reads as "skip
// that upload".
func (g *Generator) Materialize(ctx context.Context, generated models.GeneratedAssets) (models.MaterializedAssets, error) {
	materialized := models.MaterializedAssets{GeneratedAssets: generated}

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		if generated.LogoImageURL == "" {
			return nil
		}
		data, err := g.download(ctx, generated.LogoImageURL)
		if err != nil {
			return fmt.Errorf("logo download: %w", err)
		}
		materialized.LogoBytes = data
		return nil
	})

	eg.Go(func() error {
		if generated.BannerImageURL == "" {
			return nil
		}
		data, err := g.download(ctx, generated.BannerImageURL)
		if err != nil {
			return fmt.Errorf("banner download: %w", err)
		}
		materialized.BannerBytes = data
		return nil
	})

	if err := eg.Wait(); err != nil {
		return models.MaterializedAssets{}, err
	}
	return materialized, nil
}

func (g *Generator) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download failed: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
