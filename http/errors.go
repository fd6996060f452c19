package http

import "errors"

var (
	// ErrUnauthorized is returned when the request carries no key or the wrong key.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUnsupportedMediaType is returned when an upload is neither raw bytes nor multipart.
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	// ErrMalformedPayload is returned when a multipart upload cannot be parsed
	// or has no file part.
	ErrMalformedPayload = errors.New("malformed payload")
)
