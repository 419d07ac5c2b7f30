package assets

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"

	// decoders for logos delivered in other formats
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"
)

// ErrTooLarge marks an asset that exceeds the configured size limits.
var ErrTooLarge = errors.New("asset too large")

// PrepareImage decodes a logo, downscales it so that no side exceeds
// maxDimension, flattens transparency onto white and encodes an opaque RGB PNG.
// Images declaring more than maxPixels pixels are rejected before decoding.
func PrepareImage(data []byte, maxDimension, maxPixels int) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read image header (%s): %w", mimetype.Detect(data).String(), err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooLarge, cfg.Width, cfg.Height, maxPixels)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image (%s): %w", mimetype.Detect(data).String(), err)
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("image has no pixels")
	}
	if b.Dx() > maxDimension || b.Dy() > maxDimension {
		img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	} else {
		img = imaging.Clone(img)
	}

	b = img.Bounds()
	flat := imaging.Overlay(imaging.New(b.Dx(), b.Dy(), color.White), img, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flat, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// CheckDocument accepts an advertisement only if it is a PDF. The bytes are
// returned unchanged.
func CheckDocument(data []byte) ([]byte, error) {
	mt := mimetype.Detect(data)
	if !mt.Is("application/pdf") {
		return nil, fmt.Errorf("expected application/pdf, got %s", mt.String())
	}
	return data, nil
}
