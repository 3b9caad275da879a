package scan

import "errors"

// ErrListingFetch wraps a job-listing page failure. It aborts the
// current invocation only; persisted progress survives for the next one.
var ErrListingFetch = errors.New("job listing page fetch failed")
