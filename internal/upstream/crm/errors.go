package crm

import (
	"errors"
	"fmt"
)

// ErrRateLimited signals the upstream kept returning 429 after the retry
// budget was spent.
var ErrRateLimited = errors.New("upstream rate limited")

// UpstreamError is a non-2xx, non-429 upstream response. Surfaced
// immediately; not retried by this layer.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: status %d: %s", e.Status, e.Body)
}
