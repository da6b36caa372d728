// Package raster renders SVG sources into square PNG bitmaps.
package raster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"

	"icon-server/internal/ico"
)

// MaxSupersample caps the render multiplier.
const MaxSupersample = 8

var errNoViewBox = errors.New("svg has no usable viewBox")

// SVG implements ico.Rasterizer with oksvg and rasterx. Each call renders on
// its own surface, so one SVG value serves concurrent calls.
type SVG struct {
	Loader *Loader

	// Supersample renders at Supersample*size and scales down with
	// Catmull-Rom. Values <= 1 render directly at the target size.
	Supersample int
}

// NewSVG returns a rasterizer reading sources through loader.
func NewSVG(loader *Loader, supersample int) *SVG {
	return &SVG{Loader: loader, Supersample: supersample}
}

// Rasterize draws src stretched to exactly size x size and encodes it as PNG.
func (r *SVG) Rasterize(ctx context.Context, src ico.Source, size int) ([]byte, error) {
	fail := func(err error) ([]byte, error) {
		return nil, &ico.RasterizationError{Size: size, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	if size < 1 {
		return fail(fmt.Errorf("cannot create %dx%d surface", size, size))
	}

	data, err := r.Loader.Load(ctx, src)
	if err != nil {
		return fail(fmt.Errorf("load source: %w", err))
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return fail(fmt.Errorf("decode svg: %w", err))
	}
	if icon.ViewBox.W <= 0 || icon.ViewBox.H <= 0 {
		return fail(errNoViewBox)
	}

	k := r.Supersample
	if k < 1 {
		k = 1
	}
	if k > MaxSupersample {
		k = MaxSupersample
	}
	renderSize := size * k

	surface := image.NewNRGBA(image.Rect(0, 0, renderSize, renderSize))
	icon.SetTarget(0, 0, float64(renderSize), float64(renderSize))
	scanner := rasterx.NewScannerGV(renderSize, renderSize, surface, surface.Bounds())
	icon.Draw(rasterx.NewDasher(renderSize, renderSize, scanner), 1.0)

	var out image.Image = surface
	if k > 1 {
		dst := image.NewNRGBA(image.Rect(0, 0, size, size))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), surface, surface.Bounds(), xdraw.Src, nil)
		out = dst
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return fail(fmt.Errorf("encode png: %w", err))
	}
	if buf.Len() == 0 {
		return fail(ico.ErrEmptyPayload)
	}
	return buf.Bytes(), nil
}
