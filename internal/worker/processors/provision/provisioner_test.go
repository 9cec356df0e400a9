package provision

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whopgen/internal/logger"
	"whopgen/internal/models"
	"whopgen/internal/services/whop"
)

type stubAssets struct {
	genErr error
	matErr error

	logoBytes   []byte
	bannerBytes []byte
}

func (s *stubAssets) Generate(_ context.Context, subject string) (models.GeneratedAssets, error) {
	if s.genErr != nil {
		return models.GeneratedAssets{}, s.genErr
	}
	return models.GeneratedAssets{
		LogoImageURL:    "https://images.example/logo",
		BannerImageURL:  "https://images.example/banner",
		DescriptionText: "# " + subject,
		BoldClaimText:   subject + " to the moon",
		TitleText:       subject + " now",
	}, nil
}

func (s *stubAssets) Materialize(_ context.Context, generated models.GeneratedAssets) (models.MaterializedAssets, error) {
	if s.matErr != nil {
		return models.MaterializedAssets{}, s.matErr
	}
	return models.MaterializedAssets{
		GeneratedAssets: generated,
		LogoBytes:       s.logoBytes,
		BannerBytes:     s.bannerBytes,
	}, nil
}

type stubStore struct {
	mu    sync.Mutex
	calls []string

	record    models.StoreRecord
	createErr error
	logoErr   error
	bannerErr error
	chatErr   error

	logoMeta whop.StoreMetadata
}

func (s *stubStore) call(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, name)
}

func (s *stubStore) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *stubStore) CreateStore(_ context.Context, title, headline string) (models.StoreRecord, error) {
	s.call("create")
	if s.createErr != nil {
		return models.StoreRecord{}, s.createErr
	}
	return s.record, nil
}

func (s *stubStore) UploadLogo(_ context.Context, _ models.StoreRecord, _ []byte, meta whop.StoreMetadata) error {
	s.call("logo")
	s.mu.Lock()
	s.logoMeta = meta
	s.mu.Unlock()
	return s.logoErr
}

func (s *stubStore) UploadBanner(_ context.Context, _ models.StoreRecord, _ []byte) error {
	s.call("banner")
	return s.bannerErr
}

func (s *stubStore) AttachChat(_ context.Context, _ models.StoreRecord) error {
	s.call("chat")
	return s.chatErr
}

func (s *stubStore) StorefrontURL(route string) string {
	return "https://platform/" + route + "/"
}

type stubNotifier struct {
	replies []string
	err     error
}

func (n *stubNotifier) Reply(_ context.Context, triggerID, storefrontURL string) error {
	n.replies = append(n.replies, triggerID+" "+storefrontURL)
	return n.err
}

func newProvisioner(assets *stubAssets, store *stubStore, notifier *stubNotifier) *Provisioner {
	return New(assets, store, notifier, logger.New("error"))
}

func mentionRequest() models.ProvisioningRequest {
	return models.ProvisioningRequest{
		SubjectName:     "DOGE",
		SourceTriggerID: "t1",
		Source:          models.SourceMentions,
	}
}

func TestProvisioner_Run(t *testing.T) {
	assetsStub := &stubAssets{logoBytes: []byte("l"), bannerBytes: []byte("b")}
	store := &stubStore{record: models.StoreRecord{ExternalID: "pass_X", Route: "doge-7"}}
	notifier := &stubNotifier{}

	p := newProvisioner(assetsStub, store, notifier)

	record, err := p.Run(context.Background(), mentionRequest())
	require.NoError(t, err)
	assert.Equal(t, models.StoreRecord{ExternalID: "pass_X", Route: "doge-7"}, record)

	calls := store.Calls()
	require.Len(t, calls, 4)
	assert.Equal(t, "create", calls[0])
	assert.ElementsMatch(t, []string{"logo", "banner"}, calls[1:3])
	assert.Equal(t, "chat", calls[3])

	// The logo registration carries the first-time store metadata.
	assert.Equal(t, "DOGE", store.logoMeta.Title)
	assert.Equal(t, "DOGE to the moon", store.logoMeta.Headline)
	assert.Equal(t, "# DOGE", store.logoMeta.Description)

	require.Len(t, notifier.replies, 1)
	assert.Equal(t, "t1 https://platform/doge-7/", notifier.replies[0])
}

func TestProvisioner_Run_MissingBannerIsSkipped(t *testing.T) {
	assetsStub := &stubAssets{logoBytes: []byte("l")}
	store := &stubStore{record: models.StoreRecord{ExternalID: "pass_X", Route: "doge-7"}}
	notifier := &stubNotifier{}

	p := newProvisioner(assetsStub, store, notifier)

	_, err := p.Run(context.Background(), mentionRequest())
	require.NoError(t, err)

	calls := store.Calls()
	assert.NotContains(t, calls, "banner")
	assert.Contains(t, calls, "logo")
	assert.Contains(t, calls, "chat")
	assert.Len(t, notifier.replies, 1)
}

func TestProvisioner_Run_UploadFailureAbortsWithoutRollback(t *testing.T) {
	assetsStub := &stubAssets{logoBytes: []byte("l"), bannerBytes: []byte("b")}
	store := &stubStore{
		record:    models.StoreRecord{ExternalID: "pass_X", Route: "doge-7"},
		bannerErr: errors.New("forbidden"),
	}
	notifier := &stubNotifier{}

	p := newProvisioner(assetsStub, store, notifier)

	_, err := p.Run(context.Background(), mentionRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "banner upload")

	// The store was created, stays provisioned, and nothing after the
	// upload join runs: no chat attach, no reply, no compensating delete.
	calls := store.Calls()
	assert.Contains(t, calls, "create")
	assert.NotContains(t, calls, "chat")
	for _, call := range calls {
		assert.NotEqual(t, "delete", call)
	}
	assert.Empty(t, notifier.replies)
}

func TestProvisioner_Run_GenerationFailureBeforeAnyStoreCall(t *testing.T) {
	assetsStub := &stubAssets{genErr: errors.New("rate limited")}
	store := &stubStore{}
	notifier := &stubNotifier{}

	p := newProvisioner(assetsStub, store, notifier)

	_, err := p.Run(context.Background(), mentionRequest())
	require.Error(t, err)
	assert.Empty(t, store.Calls())
	assert.Empty(t, notifier.replies)
}

func TestProvisioner_Run_ReplyFailureDoesNotFailRun(t *testing.T) {
	assetsStub := &stubAssets{logoBytes: []byte("l"), bannerBytes: []byte("b")}
	store := &stubStore{record: models.StoreRecord{ExternalID: "pass_X", Route: "doge-7"}}
	notifier := &stubNotifier{err: errors.New("suspended")}

	p := newProvisioner(assetsStub, store, notifier)

	record, err := p.Run(context.Background(), mentionRequest())
	require.NoError(t, err)
	assert.Equal(t, "doge-7", record.Route)
	assert.Len(t, notifier.replies, 1)
}

func TestProvisioner_Run_ManualRequestSkipsReply(t *testing.T) {
	assetsStub := &stubAssets{logoBytes: []byte("l"), bannerBytes: []byte("b")}
	store := &stubStore{record: models.StoreRecord{ExternalID: "pass_X", Route: "doge-7"}}
	notifier := &stubNotifier{}

	p := newProvisioner(assetsStub, store, notifier)

	req := mentionRequest()
	req.Source = models.SourceManual

	_, err := p.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, notifier.replies)
}

func TestProvisioner_Run_FallsBackToSubjectTitle(t *testing.T) {
	// When the title generation came back empty the subject names the store.
	assetsStub := &stubAssets{logoBytes: []byte("l"), bannerBytes: []byte("b")}
	store := &stubStore{record: models.StoreRecord{ExternalID: "pass_X", Route: "doge-7"}}
	notifier := &stubNotifier{}

	p := New(&titlelessAssets{stubAssets: assetsStub}, store, notifier, logger.New("error"))

	_, err := p.Run(context.Background(), mentionRequest())
	require.NoError(t, err)
}

type titlelessAssets struct {
	*stubAssets
}

func (s *titlelessAssets) Generate(ctx context.Context, subject string) (models.GeneratedAssets, error) {
	generated, err := s.stubAssets.Generate(ctx, subject)
	generated.TitleText = ""
	return generated, err
}
