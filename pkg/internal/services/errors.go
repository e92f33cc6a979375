package services

import "errors"

var (
	// ErrAuthorMissing means a stored post references an account the
	// identity provider no longer resolves to a usable user. Reads treat
	// this as an integrity failure, not something to filter out.
	ErrAuthorMissing = errors.New("author for post not found")

	// ErrRateLimited means the author spent their posting quota for the
	// current window. The caller should try again later; nothing retries
	// on their behalf.
	ErrRateLimited = errors.New("posting quota exceeded, try again in a minute")
)
