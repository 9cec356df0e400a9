package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"whopgen/internal/logger"
	"whopgen/internal/models"
)

const (
	mentionsPath    = "/i/api/2/notifications/mentions.json"
	createTweetPath = "/i/api/graphql/_aUkOlYcrHMY3LR-lUVuSg/CreateTweet"
	createTweetID   = "_aUkOlYcrHMY3LR-lUVuSg"
)

// replyFeatures is the feature-flag block the CreateTweet mutation expects.
// The platform rejects requests without it.
var replyFeatures = map[string]bool{
	"communities_web_enable_tweet_community_results_fetch":                true,
	"c9s_tweet_anatomy_moderator_badge_enabled":                           true,
	"responsive_web_edit_tweet_api_enabled":                               true,
	"graphql_is_translatable_rweb_tweet_is_translatable_enabled":          true,
	"view_counts_everywhere_api_enabled":                                  true,
	"longform_notetweets_consumption_enabled":                             true,
	"responsive_web_twitter_article_tweet_consumption_enabled":            true,
	"tweet_awards_web_tipping_enabled":                                    false,
	"longform_notetweets_rich_text_read_enabled":                          true,
	"longform_notetweets_inline_media_enabled":                            true,
	"rweb_tipjar_consumption_enabled":                                     true,
	"responsive_web_graphql_exclude_directive_enabled":                    true,
	"verified_phone_label_enabled":                                        false,
	"freedom_of_speech_not_reach_fetch_enabled":                           true,
	"standardized_nudges_misinfo":                                         true,
	"responsive_web_graphql_skip_user_profile_image_extensions_enabled":   false,
	"tweet_with_visibility_results_prefer_gql_limited_actions_policy_enabled": true,
	"responsive_web_graphql_timeline_navigation_enabled":                  true,
	"responsive_web_enhance_cards_enabled":                                false,
	"premium_content_api_read_enabled":                                    false,
	"articles_preview_enabled":                                            true,
}

type Client struct {
	baseURL    string
	authToken  string
	cookie     string
	csrfToken  string
	httpClient *http.Client
	logger     *logger.Logger
}

func NewClient(baseURL, authToken, cookie, csrfToken string, logger *logger.Logger) *Client {
	return &Client{
		baseURL:   baseURL,
		authToken: authToken,
		cookie:    cookie,
		csrfToken: csrfToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// FetchMentions fetches the latest mention notifications and maps them to
// trigger events.
func (c *Client) FetchMentions(ctx context.Context) ([]models.TriggerEvent, error) {
	url := c.baseURL + mentionsPath + "?count=20&tweet_mode=extended&include_entities=true"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch mentions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("mentions request failed: %d - %s", resp.StatusCode, string(body))
	}

	var mentions mentionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&mentions); err != nil {
		return nil, fmt.Errorf("failed to decode mentions: %w", err)
	}

	observed := time.Now()
	events := make([]models.TriggerEvent, 0, len(mentions.GlobalObjects.Tweets))
	for _, t := range mentions.GlobalObjects.Tweets {
		if t.IDStr == "" {
			continue
		}
		events = append(events, models.TriggerEvent{
			ID:         t.IDStr,
			RawText:    t.FullText,
			ObservedAt: observed,
		})
	}

	return events, nil
}

// Reply posts a reply to the originating tweet containing the storefront
// link. Only the HTTP status is inspected.
func (c *Client) Reply(ctx context.Context, triggerID, storefrontURL string) error {
	payload := createTweetRequest{
		Variables: createTweetVariables{
			TweetText: fmt.Sprintf("Here's your WHOP! %s", storefrontURL),
			Reply: tweetReply{
				InReplyToTweetID:    triggerID,
				ExcludeReplyUserIDs: []string{},
			},
		},
		Features: replyFeatures,
		QueryID:  createTweetID,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal reply: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+createTweetPath, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post reply: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("reply request failed: %d - %s", resp.StatusCode, string(respBody))
	}

	c.logger.Info("Replied to tweet %s with %s", triggerID, storefrontURL)
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", c.authToken)
	req.Header.Set("Cookie", c.cookie)
	req.Header.Set("X-Csrf-Token", c.csrfToken)
	req.Header.Set("X-Twitter-Active-User", "yes")
	req.Header.Set("X-Twitter-Auth-Type", "OAuth2Session")
	req.Header.Set("X-Twitter-Client-Language", "en")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Referer", c.baseURL+"/notifications/mentions")
}
