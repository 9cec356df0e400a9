package models

// GeneratedAssets holds the branding material produced by the content
// service for one subject. Text fields may be empty when the corresponding
// generation call was skipped; image URLs are required.
type GeneratedAssets struct {
	LogoImageURL    string `json:"logo_image_url"`
	BannerImageURL  string `json:"banner_image_url"`
	DescriptionText string `json:"description_text"`
	BoldClaimText   string `json:"bold_claim_text"`
	TitleText       string `json:"title_text"`
}

// MaterializedAssets is GeneratedAssets plus the downloaded image payloads.
// An empty byte slice means the image is unavailable and its upload should
// be skipped.
type MaterializedAssets struct {
	GeneratedAssets

	LogoBytes   []byte `json:"-"`
	BannerBytes []byte `json:"-"`
}
