package tui

import "errors"

// ErrMissingRouter is returned when the session router is not provided.
var ErrMissingRouter = errors.New("tui: session router is required")
