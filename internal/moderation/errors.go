package moderation

import "errors"

// ErrClassifierUnavailable indicates the external classifier could not produce a result.
var ErrClassifierUnavailable = errors.New("moderation classifier unavailable")
