package apperr

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrSyncRunning = errors.New("sync already running")
)
