package assets

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf"
)

const (
	placeholderLogoName = "placeholder-logo.png"
	placeholderAdName   = "placeholder-ad.pdf"
)

// EnsurePlaceholders returns usable placeholder paths. Configured paths must
// exist; empty ones are generated into dir: a blank white PNG and a blank A4
// PDF page.
func EnsurePlaceholders(dir, logo, ad string) (string, string, error) {
	var err error
	if logo, err = ensure(dir, logo, placeholderLogoName, blankPNG); err != nil {
		return "", "", err
	}
	if ad, err = ensure(dir, ad, placeholderAdName, blankPDF); err != nil {
		return "", "", err
	}
	return logo, ad, nil
}

func ensure(dir, configured, name string, generate func() ([]byte, error)) (string, error) {
	if configured != "" {
		if !fileExists(configured) {
			return "", fmt.Errorf("placeholder not found: %s", configured)
		}
		return configured, nil
	}

	path := filepath.Join(dir, name)
	if fileExists(path) {
		return path, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create placeholder directory: %w", err)
	}
	data, err := generate()
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", name, err)
	}
	if err := writeAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

func blankPNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.New(400, 200, color.White), imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func blankPDF() ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
