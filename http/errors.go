package http

import "errors"

// ErrBadRequest is returned when a request body cannot be decoded or is incomplete.
var ErrBadRequest = errors.New("bad request")
