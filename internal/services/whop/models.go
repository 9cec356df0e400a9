package whop

// Unset is the sentinel the platform uses for "do not modify this field".
// It is not interchangeable with an empty string: a present empty value
// clears the field, the sentinel leaves it alone.
const Unset = "$undefined"

// StoreMetadata is the text material registered together with the logo.
type StoreMetadata struct {
	Title       string
	Headline    string
	Description string
}

// createStoreEntry is one element of the JSON array the create endpoint
// expects.
type createStoreEntry struct {
	CompanyID        string `json:"companyId"`
	Title            string `json:"title"`
	Name             string `json:"name"`
	Headline         string `json:"headline"`
	ActivateWhopFour bool   `json:"activateWhopFour"`
}

// presignRequest is the GraphQL-style mutation body for presigned uploads.
type presignRequest struct {
	Query         string           `json:"query"`
	Variables     presignVariables `json:"variables"`
	OperationName string           `json:"operationName"`
}

type presignVariables struct {
	Input presignInput `json:"input"`
}

type presignInput struct {
	FileExtV2 string `json:"fileExtV2"`
	IsPublic  bool   `json:"isPublic"`
}

type presignResponse struct {
	Data struct {
		PresignedUpload string `json:"presignedUpload"`
	} `json:"data"`
}

// passPatch carries the access-pass fields of a metadata patch. Every field
// that a given patch does not intend to modify must hold the Unset sentinel.
type passPatch struct {
	ID                        string `json:"id"`
	Title                     string `json:"title"`
	Headline                  string `json:"headline"`
	ShortenedDescription      string `json:"shortenedDescription"`
	CreatorPitch              string `json:"creatorPitch"`
	Visibility                string `json:"visibility"`
	GlobalAffiliateStatus     string `json:"globalAffiliateStatus"`
	GlobalAffiliatePercentage string `json:"globalAffiliatePercentage"`
	RedirectPurchaseURL       string `json:"redirectPurchaseUrl"`
	CustomCta                 string `json:"customCta,omitempty"`
	CustomCtaURL              string `json:"customCtaUrl,omitempty"`
	Route                     string `json:"route,omitempty"`
	Image                     string `json:"image,omitempty"`
}

// storePatchEntry is one element of the metadata-patch array. Images is
// either the Unset sentinel or a list of object URLs to append.
type storePatchEntry struct {
	CompanyID       string      `json:"companyId"`
	Pass            passPatch   `json:"pass"`
	Images          interface{} `json:"images"`
	AffiliateAssets string      `json:"affiliateAssets"`
	ProductRoute    string      `json:"productRoute"`
	Category        string      `json:"category"`
	Subcategory     string      `json:"subcategory"`
	Pathname        string      `json:"pathname"`
	Upsells         string      `json:"upsells"`
	PopupPromo      popupPromo  `json:"popupPromo"`
}

type popupPromo struct {
	Enabled            bool   `json:"enabled"`
	DiscountPercentage string `json:"discountPercentage"`
}

// chatAttachEntry is one element of the chat-attach array.
type chatAttachEntry struct {
	CompanyID    string `json:"companyId"`
	AccessPassID string `json:"accessPassId"`
	ProductRoute string `json:"productRoute"`
	AppID        string `json:"appId"`
	Name         string `json:"name"`
}
