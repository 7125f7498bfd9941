package chatgraph

import "errors"

var (
	// ErrUnsupportedFormat is returned for unrecognized import or export formats.
	ErrUnsupportedFormat = errors.New("chatgraph: unsupported format")

	// ErrNoInputs is returned when the input patterns match no files.
	ErrNoInputs = errors.New("chatgraph: no input files matched")

	// ErrNoMessages is returned when a graph build receives no messages.
	ErrNoMessages = errors.New("chatgraph: no messages")

	// ErrInvalidConfig is returned for invalid configuration values.
	ErrInvalidConfig = errors.New("chatgraph: invalid configuration")

	// ErrNoEmbedder is returned when synonym suggestion is requested
	// without an embedding provider configured.
	ErrNoEmbedder = errors.New("chatgraph: no embedding provider configured")
)
