package provision

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"whopgen/internal/logger"
	"whopgen/internal/models"
	"whopgen/internal/services/whop"
)

// AssetService produces and materializes branding assets for a subject.
type AssetService interface {
	Generate(ctx context.Context, subject string) (models.GeneratedAssets, error)
	Materialize(ctx context.Context, generated models.GeneratedAssets) (models.MaterializedAssets, error)
}

// StoreService is the commerce-platform surface the saga drives.
type StoreService interface {
	CreateStore(ctx context.Context, title, headline string) (models.StoreRecord, error)
	UploadLogo(ctx context.Context, store models.StoreRecord, image []byte, meta whop.StoreMetadata) error
	UploadBanner(ctx context.Context, store models.StoreRecord, image []byte) error
	AttachChat(ctx context.Context, store models.StoreRecord) error
	StorefrontURL(route string) string
}

// Notifier posts the confirmation reply back to the trigger's thread.
type Notifier interface {
	Reply(ctx context.Context, triggerID, storefrontURL string) error
}

// Provisioner runs the provisioning saga for one request: generate assets,
// materialize them, create the store, upload images, attach chat, reply.
// Failure at any step ends the run; there is no compensating rollback, so a
// store created before a later failure stays provisioned.
type Provisioner struct {
	assets   AssetService
	store    StoreService
	notifier Notifier
	logger   *logger.Logger
}

func New(assets AssetService, store StoreService, notifier Notifier, logger *logger.Logger) *Provisioner {
	return &Provisioner{
		assets:   assets,
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// Run executes the saga and returns the provisioned store record.
func (p *Provisioner) Run(ctx context.Context, req models.ProvisioningRequest) (models.StoreRecord, error) {
	p.logger.Info("Provisioning storefront for subject %q (trigger %s)", req.SubjectName, req.SourceTriggerID)

	generated, err := p.assets.Generate(ctx, req.SubjectName)
	if err != nil {
		return models.StoreRecord{}, fmt.Errorf("asset generation: %w", err)
	}
	p.logger.Debug("Assets generated for %q", req.SubjectName)

	materialized, err := p.assets.Materialize(ctx, generated)
	if err != nil {
		return models.StoreRecord{}, fmt.Errorf("asset materialization: %w", err)
	}
	p.logger.Debug("Assets materialized for %q", req.SubjectName)

	title := materialized.TitleText
	if title == "" {
		title = req.SubjectName
	}

	store, err := p.store.CreateStore(ctx, title, materialized.BoldClaimText)
	if err != nil {
		return models.StoreRecord{}, fmt.Errorf("store creation: %w", err)
	}

	if err := p.uploadImages(ctx, store, req, materialized); err != nil {
		return models.StoreRecord{}, err
	}

	if err := p.store.AttachChat(ctx, store); err != nil {
		return models.StoreRecord{}, fmt.Errorf("chat attach: %w", err)
	}

	p.reply(ctx, req, store)

	p.logger.Info("Provisioned storefront %s for subject %q", store.Route, req.SubjectName)
	return store, nil
}

// uploadImages runs the two independent uploads as a fan-out with a join
// before chat attach. Each upload is optional: a missing payload is logged
// and skipped, not treated as failure.
func (p *Provisioner) uploadImages(ctx context.Context, store models.StoreRecord, req models.ProvisioningRequest, materialized models.MaterializedAssets) error {
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		if len(materialized.LogoBytes) == 0 {
			p.logger.Warn("No logo payload for %q, skipping logo upload", req.SubjectName)
			return nil
		}
		meta := whop.StoreMetadata{
			Title:       req.SubjectName,
			Headline:    materialized.BoldClaimText,
			Description: materialized.DescriptionText,
		}
		if err := p.store.UploadLogo(ctx, store, materialized.LogoBytes, meta); err != nil {
			return fmt.Errorf("logo upload: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		if len(materialized.BannerBytes) == 0 {
			p.logger.Warn("No banner payload for %q, skipping banner upload", req.SubjectName)
			return nil
		}
		if err := p.store.UploadBanner(ctx, store, materialized.BannerBytes); err != nil {
			return fmt.Errorf("banner upload: %w", err)
		}
		return nil
	})

	return eg.Wait()
}

// reply posts the confirmation and waits for its outcome. A reply failure is
// logged but does not fail the run: the storefront exists either way, and
// retrying the saga would provision a duplicate.
func (p *Provisioner) reply(ctx context.Context, req models.ProvisioningRequest, store models.StoreRecord) {
	if req.Source == models.SourceManual {
		p.logger.Debug("Manual request, no reply to post for %s", store.Route)
		return
	}

	url := p.store.StorefrontURL(store.Route)
	if err := p.notifier.Reply(ctx, req.SourceTriggerID, url); err != nil {
		p.logger.Error("Failed to reply to trigger %s: %v", req.SourceTriggerID, err)
	}
}
