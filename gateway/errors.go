package gateway

import "errors"

// ErrShutdownInProgress is returned for calls that arrive after shutdown
// has begun. In-flight requests are allowed to finish; new ones are not
// admitted.
var ErrShutdownInProgress = errors.New("gateway: shutdown in progress")
