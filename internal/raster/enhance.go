// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package raster

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

const (
	// enhanceMinDim is the smallest render dimension OCR engines handle
	// well. Anything below it gets upscaled.
	enhanceMinDim = 1000

	upscaleFactor = 2
)

// Enhance rewrites the PNG at path with OCR-friendly preprocessing:
// grayscale conversion, plus a 2x Catmull-Rom upscale when the render is
// smaller than 1000px on either side.
func Enhance(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening render: %w", err)
	}
	src, err := png.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	scale := 1
	if min(w, h) < enhanceMinDim {
		scale = upscaleFactor
	}

	gray := image.NewGray(image.Rect(0, 0, w*scale, h*scale))
	if scale == 1 {
		draw.Draw(gray, gray.Bounds(), src, b.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(gray, gray.Bounds(), src, b, draw.Src, nil)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("rewriting render: %w", err)
	}
	if err := png.Encode(out, gray); err != nil {
		out.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return out.Close()
}
