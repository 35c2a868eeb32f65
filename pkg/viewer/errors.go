package viewer

import "errors"

// ErrLoopStopped is returned when work is posted to a loop that is not
// running.
var ErrLoopStopped = errors.New("viewer: loop stopped")
