package kvstore

import "errors"

// Sentinel kinds for store errors.
var (
	ErrUnavailable = errors.New("kv store unavailable")
)
