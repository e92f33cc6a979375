package models

// Account is a user record owned by the identity provider.
// We never store these; they are fetched on demand and live for
// a single request at most. Username is nullable at the source.
type Account struct {
	ID       string  `json:"id"`
	Username *string `json:"username"`
	Avatar   string  `json:"profile_image_url"`
}

// Author is an account whose username is known to be present.
// Only post enrichment constructs these.
type Author struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"profile_image_url"`
}
