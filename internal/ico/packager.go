package ico

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// DefaultSizes is used when a caller passes a nil size list.
var DefaultSizes = []int{16, 32, 48}

// Source references SVG data. Exactly one of Data or URL is expected; Data
// wins when both are set. The packager never mutates it.
type Source struct {
	Data []byte
	URL  string
}

// Rasterizer renders src as a square PNG of size x size pixels.
// Implementations must be safe for concurrent use.
type Rasterizer interface {
	Rasterize(ctx context.Context, src Source, size int) ([]byte, error)
}

// RasterizerFunc adapts a function to the Rasterizer interface.
type RasterizerFunc func(ctx context.Context, src Source, size int) ([]byte, error)

func (f RasterizerFunc) Rasterize(ctx context.Context, src Source, size int) ([]byte, error) {
	return f(ctx, src, size)
}

// SourceLoader resolves a Source into the SVG bytes it references.
type SourceLoader interface {
	Load(ctx context.Context, src Source) ([]byte, error)
}

// Packager rasterizes a source at several sizes and packs the results into
// a single PNG-embedded ICO container.
type Packager struct {
	Rasterizer Rasterizer

	// Loader, if set, resolves the source once before fan-out. Every size
	// then renders from the same bytes.
	Loader SourceLoader

	// OnRasterized, if set, is called once per finished size. It runs on the
	// rasterizing goroutine and may be called concurrently.
	OnRasterized func(size, index, byteLen int)
}

// Pack validates sizes, rasterizes every size concurrently and returns the
// encoded container. A nil sizes slice means DefaultSizes.
func (p *Packager) Pack(ctx context.Context, src Source, sizes []int) ([]byte, error) {
	if sizes == nil {
		sizes = DefaultSizes
	}
	if err := validateSizes(sizes); err != nil {
		return nil, err
	}
	if p.Rasterizer == nil {
		return nil, &PackagingError{Reason: "no rasterizer configured", Err: errors.New("nil Rasterizer")}
	}

	if p.Loader != nil {
		data, err := p.Loader.Load(ctx, src)
		if err != nil {
			return nil, &PackagingError{Reason: "source unavailable", Err: fmt.Errorf("%w: %w", ErrLoadSource, err)}
		}
		if len(data) == 0 {
			return nil, &PackagingError{Reason: "source unavailable", Err: fmt.Errorf("%w: %w", ErrLoadSource, ErrEmptyPayload)}
		}
		src = Source{Data: data}
	}

	payloads := make([][]byte, len(sizes))
	g, gctx := errgroup.WithContext(ctx)
	for i, size := range sizes {
		i, size := i, size
		g.Go(func() error {
			png, err := p.Rasterizer.Rasterize(gctx, src, size)
			if err != nil {
				var rerr *RasterizationError
				if !errors.As(err, &rerr) {
					err = &RasterizationError{Size: size, Err: err}
				}
				return err
			}
			if len(png) == 0 {
				return &RasterizationError{Size: size, Err: ErrEmptyPayload}
			}
			payloads[i] = png
			if p.OnRasterized != nil {
				p.OnRasterized(size, i, len(png))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var rerr *RasterizationError
		size := 0
		if errors.As(err, &rerr) {
			size = rerr.Size
		}
		return nil, &PackagingError{Reason: "rasterization failed", Size: size, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &PackagingError{Reason: "cancelled", Err: err}
	}

	return Encode(sizes, payloads)
}
