package convert

import "errors"

// Fatal conversion errors. Anything else that goes wrong during
// conversion is contained to the slide it happened on.
var (
	// ErrMalformedPackage reports input that is not a readable
	// presentation package: not a ZIP archive, missing its presentation
	// part, or tripping a size guard.
	ErrMalformedPackage = errors.New("malformed presentation package")

	// ErrNoSlides reports a structurally valid package with zero slides.
	ErrNoSlides = errors.New("presentation contains no slides")
)
