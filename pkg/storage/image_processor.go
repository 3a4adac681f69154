package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
)

const (
	// MaxImageSize is the largest accepted upload.
	MaxImageSize = 10 * 1024 * 1024
	// MaxImagePixels bounds the decoded canvas, which a small file can inflate.
	MaxImagePixels = 40_000_000
	// MaxImageEdge is the longest accepted side in pixels.
	MaxImageEdge = 10000
)

// VariantSizes maps each rendered variant to its bounding box edge in pixels.
var VariantSizes = map[string]int{
	"large":     1200,
	"medium":    600,
	"thumbnail": 300,
}

// ImageInfo describes a validated upload.
type ImageInfo struct {
	Format string
	Width  int
	Height int
}

// ImageProcessor validates uploads and renders resized JPEG variants.
type ImageProcessor struct {
	MaxSize int64
	Quality int
}

func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{MaxSize: MaxImageSize, Quality: 90}
}

// ValidateImage accepts JPEG and PNG data up to MaxSize whose declared
// dimensions fit MaxImageEdge and MaxImagePixels.
func (p *ImageProcessor) ValidateImage(data []byte) (ImageInfo, error) {
	if len(data) == 0 {
		return ImageInfo{}, fmt.Errorf("image is empty")
	}
	if int64(len(data)) > p.MaxSize {
		return ImageInfo{}, fmt.Errorf("image exceeds %dMB", p.MaxSize/(1024*1024))
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, fmt.Errorf("not an image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return ImageInfo{}, fmt.Errorf("image has no pixels")
	}
	if cfg.Width > MaxImageEdge || cfg.Height > MaxImageEdge || int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return ImageInfo{}, fmt.Errorf("image dimensions %dx%d exceed the %d pixel limit", cfg.Width, cfg.Height, MaxImagePixels)
	}
	switch format {
	case "jpeg", "png":
		return ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
	default:
		return ImageInfo{}, fmt.Errorf("image format %s not allowed (only jpeg/png)", format)
	}
}

// ProcessImage returns variant name → JPEG bytes. Images smaller than a variant are not upscaled.
func (p *ImageProcessor) ProcessImage(data []byte) (map[string][]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("cannot decode image: %w", err)
	}

	bounds := img.Bounds()
	variants := make(map[string][]byte, len(VariantSizes))
	for name, size := range VariantSizes {
		resized := image.Image(img)
		if bounds.Dx() > size || bounds.Dy() > size {
			resized = imaging.Fit(img, size, size, imaging.Lanczos)
		}
		buf := new(bytes.Buffer)
		if err := jpeg.Encode(buf, resized, &jpeg.Options{Quality: p.Quality}); err != nil {
			return nil, fmt.Errorf("cannot encode %s: %w", name, err)
		}
		variants[name] = buf.Bytes()
	}
	return variants, nil
}
