package core

import "errors"

// Error taxonomy shared by services and handlers. Handlers map these to
// HTTP status codes; everything else surfaces as an internal error.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthenticated = errors.New("unauthenticated")
)
