package ico

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSizes is returned when a packaging request carries no sizes.
	ErrNoSizes = errors.New("ico: no sizes requested")
	// ErrSizeOutOfRange is returned for sizes outside [1,256].
	ErrSizeOutOfRange = errors.New("ico: size out of range")
	// ErrEmptyPayload is returned when a rasterizer yields zero bytes for a size.
	ErrEmptyPayload = errors.New("ico: empty image payload")
	// ErrLoadSource is returned when the source cannot be resolved to SVG bytes.
	ErrLoadSource = errors.New("ico: source failed to load")
	// ErrInvalidIcon is returned by Parse for malformed containers.
	ErrInvalidIcon = errors.New("ico: invalid icon file")
)

// RasterizationError reports a failure to turn the source into a PNG at Size.
type RasterizationError struct {
	Size int
	Err  error
}

func (e *RasterizationError) Error() string {
	return fmt.Sprintf("rasterize %dx%d: %v", e.Size, e.Size, e.Err)
}

func (e *RasterizationError) Unwrap() error { return e.Err }

// PackagingError reports an invalid size list or a failed rasterization
// that aborted the whole container.
type PackagingError struct {
	Reason string
	Size   int
	Err    error
}

func (e *PackagingError) Error() string {
	if e.Size != 0 {
		return fmt.Sprintf("package icon: %s (size %d): %v", e.Reason, e.Size, e.Err)
	}
	return fmt.Sprintf("package icon: %s: %v", e.Reason, e.Err)
}

func (e *PackagingError) Unwrap() error { return e.Err }
