package credentials

import "errors"

// ErrNotAuthenticated signals that no session exists. Callers degrade to
// empty data for the affected source rather than failing the build.
var ErrNotAuthenticated = errors.New("not authenticated")
