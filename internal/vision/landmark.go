// Package vision wraps the image-recognition collaborator. Detection is
// strictly best-effort: every failure mode collapses to "no landmark" and
// retrying is the caller's business.
package vision

import "context"

// Detector names the most prominent landmark in an image, if any.
type Detector interface {
	// Detect returns (name, true) on a hit. Service errors, transport errors
	// and empty results all return ("", false); Detect never fails loudly.
	Detect(ctx context.Context, imageURL string) (string, bool)
}
