package dataset

import "errors"

var (
	ErrMissingColumn     = errors.New("missing column")
	ErrMalformedValue    = errors.New("malformed value")
	ErrUnsupportedFormat = errors.New("unsupported format")
)
