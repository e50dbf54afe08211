package client

import "errors"

var (
	ErrEndpointRequired = errors.New("endpoint is required")
	ErrInvalidEndpoint  = errors.New("endpoint must be an http or https URL")
	// ErrUnexpectedResponse is returned for statuses and bodies the server
	// does not produce for well-formed requests.
	ErrUnexpectedResponse = errors.New("unexpected response")
)
