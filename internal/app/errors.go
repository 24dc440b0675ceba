package service

import "errors"

// ErrNotStarted is returned by request-path calls made before Start.
var ErrNotStarted = errors.New("service not started")
