package embedding

import "errors"

var (
	// ErrInvalidConfiguration is returned by New when the embedder settings are unusable.
	ErrInvalidConfiguration = errors.New("invalid embedder configuration")
	// ErrInvalidInputType is returned when a batch is not a list of strings.
	ErrInvalidInputType = errors.New("invalid input type")
)
