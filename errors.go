package noteshrink

import "errors"

var (
	// ErrInvalidConfiguration reports option values outside their valid
	// ranges. Rejected before any processing begins.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInsufficientSamples reports fewer foreground samples than the
	// requested cluster count. The caller must raise the sample fraction
	// or lower the color count; the failure is never downgraded.
	ErrInsufficientSamples = errors.New("insufficient samples")

	// ErrEmptyBuffer reports an empty or malformed pixel buffer.
	ErrEmptyBuffer = errors.New("empty pixel buffer")
)
