package raster

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"icon-server/internal/ico"
)

// DefaultMaxBytes bounds how much SVG a Loader will read.
const DefaultMaxBytes int64 = 1 << 20

var (
	ErrRemoteDisabled = errors.New("remote sources are disabled")
	ErrFileDisabled   = errors.New("file sources are disabled")
	ErrTooLarge       = errors.New("source exceeds size limit")
	ErrUnsupported    = errors.New("unsupported source reference")
)

// Loader resolves an ico.Source into SVG bytes.
type Loader struct {
	// Client fetches http(s) sources. Nil disables remote fetching.
	Client *http.Client
	// MaxBytes caps the loaded size; zero means DefaultMaxBytes.
	MaxBytes int64
	// AllowFile enables file:// sources. Leave it off for untrusted callers.
	AllowFile bool
}

func (l *Loader) limit() int64 {
	if l == nil || l.MaxBytes <= 0 {
		return DefaultMaxBytes
	}
	return l.MaxBytes
}

// Load returns the raw SVG bytes referenced by src.
func (l *Loader) Load(ctx context.Context, src ico.Source) ([]byte, error) {
	if len(src.Data) > 0 {
		if int64(len(src.Data)) > l.limit() {
			return nil, ErrTooLarge
		}
		return src.Data, nil
	}
	ref := strings.TrimSpace(src.URL)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty source", ErrUnsupported)
	}

	switch {
	case strings.HasPrefix(ref, "data:"):
		return l.loadDataURL(ref)
	case strings.HasPrefix(ref, "file://"):
		return l.loadFile(strings.TrimPrefix(ref, "file://"))
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return l.loadRemote(ctx, ref)
	case strings.HasPrefix(ref, "<"):
		// Inline markup passed where a URL was expected.
		return l.checked([]byte(ref))
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupported, ref)
}

func (l *Loader) checked(b []byte) ([]byte, error) {
	if int64(len(b)) > l.limit() {
		return nil, ErrTooLarge
	}
	return b, nil
}

// loadDataURL decodes data:[<mediatype>][;base64],<data>.
func (l *Loader) loadDataURL(ref string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("%w: data URL has no payload", ErrUnsupported)
	}
	if strings.HasSuffix(meta, ";base64") {
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			b, err = base64.RawStdEncoding.DecodeString(payload)
		}
		if err != nil {
			return nil, fmt.Errorf("decode base64 data URL: %w", err)
		}
		return l.checked(b)
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("decode data URL: %w", err)
	}
	return l.checked([]byte(s))
}

func (l *Loader) loadFile(path string) ([]byte, error) {
	if l == nil || !l.AllowFile {
		return nil, ErrFileDisabled
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer f.Close()
	return l.readLimited(f)
}

func (l *Loader) loadRemote(ctx context.Context, ref string) ([]byte, error) {
	if l == nil || l.Client == nil {
		return nil, ErrRemoteDisabled
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch source: HTTP %d", resp.StatusCode)
	}
	return l.readLimited(resp.Body)
}

func (l *Loader) readLimited(r io.Reader) ([]byte, error) {
	max := l.limit()
	b, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	if int64(len(b)) > max {
		return nil, ErrTooLarge
	}
	return b, nil
}
