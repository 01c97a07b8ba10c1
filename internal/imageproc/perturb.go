// Package imageproc re-encodes uploaded images so the recognition service
// sees a fresh variant on each retry. Detection is sensitive to exact
// framing and resolution; a resample gives it a new view of the same upload.
package imageproc

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"math/rand"
	"sync"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/SumireDoi/LocaConne/internal/storage"
	"github.com/SumireDoi/LocaConne/pkg/logger"
)

// Dimension floors keep enough detail for the detector. Sampling never
// upscales; a source already below either floor cannot be perturbed.
const (
	minWidth  = 640
	minHeight = 480
)

// Perturber produces resampled variants of stored images.
type Perturber struct {
	store storage.ObjectStorage

	mu  sync.Mutex
	rng *rand.Rand
}

// NewPerturber builds a perturber drawing sizes from rng. Pass a seeded
// source in tests for reproducible geometry.
func NewPerturber(store storage.ObjectStorage, rng *rand.Rand) *Perturber {
	return &Perturber{store: store, rng: rng}
}

// Perturb downloads the image, resamples it to a randomly drawn smaller
// geometry and re-uploads it under a content-addressed name. Any failure
// (download, decode, undersized source, upload) yields ("", false).
func (p *Perturber) Perturb(ctx context.Context, imageURL string) (string, bool) {
	data, err := p.store.Read(ctx, imageURL)
	if err != nil {
		logger.Warn("perturb: download failed", zap.String("image_url", imageURL), zap.Error(err))
		return "", false
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		logger.Warn("perturb: decode failed", zap.String("image_url", imageURL), zap.Error(err))
		return "", false
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < minWidth || height < minHeight {
		logger.Warn("perturb: image below size floor",
			zap.Int("width", width), zap.Int("height", height))
		return "", false
	}

	p.mu.Lock()
	newWidth := minWidth + p.rng.Intn(width-minWidth+1)
	newHeight := minHeight + p.rng.Intn(height-minHeight+1)
	p.mu.Unlock()

	resized := imaging.Resize(img, newWidth, newHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG); err != nil {
		logger.Warn("perturb: encode failed", zap.Error(err))
		return "", false
	}

	// Content-address by the pre-resize bytes so the same source always maps
	// to the same object name.
	name := fmt.Sprintf("modified_%x.jpg", sha256.Sum256(data))
	newURL, err := p.store.Write(ctx, name, "image/jpeg", buf.Bytes())
	if err != nil {
		logger.Warn("perturb: upload failed", zap.String("name", name), zap.Error(err))
		return "", false
	}
	return newURL, true
}
