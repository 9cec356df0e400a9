package models

// StoreRecord identifies a provisioned storefront on the commerce platform.
// Every step after store creation (uploads, chat, reply) attaches to it.
type StoreRecord struct {
	ExternalID string `json:"external_id"`
	Route      string `json:"route"`
}
