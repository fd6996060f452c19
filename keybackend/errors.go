package keybackend

import "errors"

// ErrNoKeys is returned when neither an inline key nor a key file yields a key.
var ErrNoKeys = errors.New("no api key configured")
