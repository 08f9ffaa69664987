package colour

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyResult is returned when no pixel survives the transparency filter.
	ErrEmptyResult = errors.New("no colours found in image")

	// ErrInvalidImage is returned for images with zero width or height.
	ErrInvalidImage = errors.New("image has no pixels")
)

// DecodeError reports that an image source could not be rasterised.
type DecodeError struct {
	// Source is the path, URL or label of the input.
	Source string
	// Format is the detected format, if any.
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Format != "" {
		return fmt.Sprintf("could not load image %s (format: %s): %v", e.Source, e.Format, e.Err)
	}
	return fmt.Sprintf("could not load image %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError reports whether err is or wraps a *DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
