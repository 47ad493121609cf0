package ipfs

import "errors"

var (
	// Remote store couldn't be reached or didn't accept the content
	ErrStoreUnavailable = errors.New("content store unavailable")

	ErrFailedToParse = errors.New("failed to parse response")
	ErrHashEmpty     = errors.New("content identifier is empty")
)
