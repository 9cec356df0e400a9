package whop

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"whopgen/internal/logger"
	"whopgen/internal/models"
)

// Server-action identifiers for the undocumented web endpoints. The platform
// routes the POST body by this header, not by the URL.
const (
	createStoreAction = "e05ea7d4b495bee9e51357af2bbd573314ef1b8f"
	patchStoreAction  = "0d2386c25adce7fa1d2610040374916127470e0d"
	attachChatAction  = "b832dca966cd346c862a8ec06e3a974bdae0313b"
)

const presignMutation = "\n    mutation fetchPresignedUploadUrl($input: PresignedUploadInput!) {\n  presignedUpload(input: $input)\n}\n    "

type Client struct {
	baseURL    string
	cookie     string
	companyID  string
	chatAppID  string
	httpClient *http.Client
	logger     *logger.Logger
}

func NewClient(baseURL, cookie, companyID, chatAppID string, logger *logger.Logger) *Client {
	return &Client{
		baseURL:   baseURL,
		cookie:    cookie,
		companyID: companyID,
		chatAppID: chatAppID,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

// StorefrontURL returns the public URL for a provisioned store route.
func (c *Client) StorefrontURL(route string) string {
	return fmt.Sprintf("%s/%s/", c.baseURL, route)
}

// CreateStore provisions a storefront and parses the store id and route out
// of the streamed response. Both fields are required; anything less is a
// failure for the whole run.
func (c *Client) CreateStore(ctx context.Context, title, headline string) (models.StoreRecord, error) {
	payload := []createStoreEntry{
		{
			CompanyID:        c.companyID,
			Title:            title,
			Name:             title,
			Headline:         headline,
			ActivateWhopFour: true,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return models.StoreRecord{}, fmt.Errorf("failed to marshal create payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/new/", bytes.NewBuffer(body))
	if err != nil {
		return models.StoreRecord{}, fmt.Errorf("failed to create request: %w", err)
	}
	c.setActionHeaders(req, createStoreAction)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.StoreRecord{}, fmt.Errorf("failed to create store: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.StoreRecord{}, fmt.Errorf("failed to read create response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.StoreRecord{}, fmt.Errorf("create store failed: %d - %s", resp.StatusCode, string(respBody))
	}

	record, err := extractStoreRecord(string(respBody))
	if err != nil {
		return models.StoreRecord{}, err
	}

	c.logger.Info("Created store %s at route %s", record.ExternalID, record.Route)
	return record, nil
}

// UploadLogo runs the two-phase upload for the logo image and registers it
// together with the store's first-time text metadata.
func (c *Client) UploadLogo(ctx context.Context, store models.StoreRecord, image []byte, meta StoreMetadata) error {
	imageURL, err := c.uploadImage(ctx, image)
	if err != nil {
		return fmt.Errorf("logo upload: %w", err)
	}

	entry := storePatchEntry{
		CompanyID: c.companyID,
		Pass: passPatch{
			ID:                        store.ExternalID,
			Title:                     meta.Title,
			Headline:                  meta.Headline,
			ShortenedDescription:      meta.Description,
			CreatorPitch:              Unset,
			Visibility:                "visible",
			GlobalAffiliateStatus:     Unset,
			GlobalAffiliatePercentage: Unset,
			RedirectPurchaseURL:       "",
			CustomCta:                 "join",
			CustomCtaURL:              "",
			Image:                     imageURL,
		},
		Images:          Unset,
		AffiliateAssets: Unset,
		ProductRoute:    store.Route,
		Category:        Unset,
		Subcategory:     Unset,
		Pathname:        "/" + store.Route + "/",
		Upsells:         Unset,
		PopupPromo:      popupPromo{Enabled: false, DiscountPercentage: Unset},
	}

	if err := c.patchStore(ctx, store.Route, entry); err != nil {
		return fmt.Errorf("logo registration: %w", err)
	}
	return nil
}

// UploadBanner runs the two-phase upload for the banner image and appends it
// to the store's image list. Every pass field it does not touch carries the
// unset sentinel.
func (c *Client) UploadBanner(ctx context.Context, store models.StoreRecord, image []byte) error {
	imageURL, err := c.uploadImage(ctx, image)
	if err != nil {
		return fmt.Errorf("banner upload: %w", err)
	}

	entry := storePatchEntry{
		CompanyID: c.companyID,
		Pass: passPatch{
			ID:                        store.ExternalID,
			Title:                     Unset,
			Headline:                  Unset,
			ShortenedDescription:      Unset,
			CreatorPitch:              Unset,
			Visibility:                Unset,
			GlobalAffiliateStatus:     Unset,
			GlobalAffiliatePercentage: Unset,
			RedirectPurchaseURL:       Unset,
			Route:                     Unset,
		},
		Images:          []string{imageURL},
		AffiliateAssets: Unset,
		ProductRoute:    store.Route,
		Category:        Unset,
		Subcategory:     Unset,
		Pathname:        "/" + store.Route + "/",
		Upsells:         Unset,
		PopupPromo:      popupPromo{Enabled: false, DiscountPercentage: Unset},
	}

	if err := c.patchStore(ctx, store.Route, entry); err != nil {
		return fmt.Errorf("banner registration: %w", err)
	}
	return nil
}

// AttachChat enables the chat app on a provisioned store. Only the status is
// of interest; a non-2xx answer is logged, not fatal.
func (c *Client) AttachChat(ctx context.Context, store models.StoreRecord) error {
	payload := []chatAttachEntry{
		{
			CompanyID:    c.companyID,
			AccessPassID: store.ExternalID,
			ProductRoute: store.Route,
			AppID:        c.chatAppID,
			Name:         "Chat",
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.StorefrontURL(store.Route), bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setActionHeaders(req, attachChatAction)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to attach chat: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Info("Chat attach on %s returned status %d", store.Route, resp.StatusCode)
	return nil
}

// uploadImage requests a presigned target, PUTs the payload and returns the
// final object URL.
func (c *Client) uploadImage(ctx context.Context, image []byte) (string, error) {
	presignedURL, err := c.fetchPresignedURL(ctx, "jpeg")
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, presignedURL, bytes.NewReader(image))
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")
	req.Header.Set("Accept", "*/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("image upload failed: %d", resp.StatusCode)
	}

	// The object URL is the presigned URL without its query string.
	return strings.SplitN(presignedURL, "?", 2)[0], nil
}

func (c *Client) fetchPresignedURL(ctx context.Context, fileExt string) (string, error) {
	payload := presignRequest{
		Query: presignMutation,
		Variables: presignVariables{
			Input: presignInput{FileExtV2: fileExt, IsPublic: true},
		},
		OperationName: "fetchPresignedUploadUrl",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal presign payload: %w", err)
	}

	url := c.baseURL + "/api/graphql/fetchPresignedUploadUrl/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Cookie", c.cookie)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch presigned URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("presign request failed: %d - %s", resp.StatusCode, string(respBody))
	}

	var presign presignResponse
	if err := json.NewDecoder(resp.Body).Decode(&presign); err != nil {
		return "", fmt.Errorf("failed to decode presign response: %w", err)
	}
	if presign.Data.PresignedUpload == "" {
		return "", fmt.Errorf("presign response contained no URL")
	}
	return presign.Data.PresignedUpload, nil
}

func (c *Client) patchStore(ctx context.Context, route string, entry storePatchEntry) error {
	body, err := json.Marshal([]storePatchEntry{entry})
	if err != nil {
		return fmt.Errorf("failed to marshal patch payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.StorefrontURL(route), bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setActionHeaders(req, patchStoreAction)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to patch store: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("store patch failed: %d - %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func (c *Client) setActionHeaders(req *http.Request, action string) {
	req.Header.Set("Accept", "text/x-component")
	req.Header.Set("Content-Type", "text/plain;charset=UTF-8")
	req.Header.Set("Next-Action", action)
	req.Header.Set("Cookie", c.cookie)
	req.Header.Set("Origin", c.baseURL)
}
