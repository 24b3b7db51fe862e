package services

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// svgToPNG rasterizes an SVG document at its viewBox size multiplied by
// scale. Elements oksvg does not support, such as embedded images, are
// skipped rather than failing the conversion.
func svgToPNG(svgData []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(svgData), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, err
	}

	w, h := icon.ViewBox.W, icon.ViewBox.H
	if w <= 0 || h <= 0 {
		return nil, errors.New("svg has no viewBox size")
	}
	outW := int(math.Ceil(w * scale))
	outH := int(math.Ceil(h * scale))
	icon.SetTarget(0, 0, float64(outW), float64(outH))

	// RGBA keeps the rounded corners transparent
	img := image.NewRGBA(image.Rect(0, 0, outW, outH))
	scanner := rasterx.NewScannerGV(outW, outH, img, img.Bounds())
	raster := rasterx.NewDasher(outW, outH, scanner)
	icon.Draw(raster, 1.0)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
