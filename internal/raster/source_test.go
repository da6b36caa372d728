package raster

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"icon-server/internal/ico"
)

func TestLoadData(t *testing.T) {
	l := &Loader{}
	got, err := l.Load(context.Background(), ico.Source{Data: []byte(redSquare), URL: "ignored"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(got) != redSquare {
		t.Error("Expected Data to be returned unchanged")
	}
}

func TestLoadDataURL(t *testing.T) {
	l := &Loader{}
	refs := []string{
		"data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(redSquare)),
		"data:image/svg+xml;base64," + base64.RawStdEncoding.EncodeToString([]byte(redSquare)),
		"data:image/svg+xml;charset=utf-8," + url.PathEscape(redSquare),
		redSquare,
	}
	for _, ref := range refs {
		got, err := l.Load(context.Background(), ico.Source{URL: ref})
		if err != nil {
			t.Fatalf("Load(%.40q) failed: %v", ref, err)
		}
		if string(got) != redSquare {
			t.Errorf("Load(%.40q) returned %q", ref, got)
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logo.svg")
	if err := os.WriteFile(path, []byte(redSquare), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	got, err := (&Loader{AllowFile: true}).Load(context.Background(), ico.Source{URL: "file://" + path})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(got) != redSquare {
		t.Error("Unexpected file content")
	}
}

func TestLoadFileDisabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logo.svg")
	if err := os.WriteFile(path, []byte(redSquare), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	for _, ref := range []string{"file://" + path, "file:///nonexistent/logo.svg"} {
		got, err := (&Loader{}).Load(context.Background(), ico.Source{URL: ref})
		if !errors.Is(err, ErrFileDisabled) {
			t.Errorf("Load(%q): expected ErrFileDisabled, got %v", ref, err)
		}
		if got != nil {
			t.Errorf("Load(%q) returned content with file sources disabled", ref)
		}
	}
}

func TestLoadRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.svg" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write([]byte(redSquare))
	}))
	defer srv.Close()

	if _, err := (&Loader{}).Load(context.Background(), ico.Source{URL: srv.URL + "/logo.svg"}); !errors.Is(err, ErrRemoteDisabled) {
		t.Errorf("Expected ErrRemoteDisabled, got %v", err)
	}

	l := &Loader{Client: srv.Client()}
	got, err := l.Load(context.Background(), ico.Source{URL: srv.URL + "/logo.svg"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(got) != redSquare {
		t.Error("Unexpected remote content")
	}

	if _, err := l.Load(context.Background(), ico.Source{URL: srv.URL + "/missing.svg"}); err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("Expected HTTP 404 error, got %v", err)
	}
}

func TestLoadLimits(t *testing.T) {
	l := &Loader{MaxBytes: 8}
	if _, err := l.Load(context.Background(), ico.Source{Data: []byte(redSquare)}); !errors.Is(err, ErrTooLarge) {
		t.Errorf("Expected ErrTooLarge for Data, got %v", err)
	}
	if _, err := l.Load(context.Background(), ico.Source{URL: redSquare}); !errors.Is(err, ErrTooLarge) {
		t.Errorf("Expected ErrTooLarge for inline markup, got %v", err)
	}
}

func TestLoadUnsupported(t *testing.T) {
	l := &Loader{}
	for _, ref := range []string{"", "ftp://example.com/a.svg", "data:image/svg+xml;base64", "data:;base64,***"} {
		if _, err := l.Load(context.Background(), ico.Source{URL: ref}); err == nil {
			t.Errorf("Expected error for %q", ref)
		}
	}
}
