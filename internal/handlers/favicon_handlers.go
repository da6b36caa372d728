package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"icon-server/internal/ico"
	"icon-server/internal/raster"
	"icon-server/internal/types"
	"icon-server/pkg/config"
	"icon-server/web"
)

// FaviconHandler packages an uploaded SVG into an ICO.
// The body is raw SVG, or a types.FaviconRequest when sent as JSON.
func (s *Server) FaviconHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, "Méthode non autorisée", http.StatusMethodNotAllowed)
		return
	}

	req, status, err := s.decodeFaviconRequest(w, r)
	if err != nil {
		sendError(w, err.Error(), status)
		return
	}
	if req.ID == "" {
		req.ID = GenerateID()
	}

	sizes := req.Sizes
	if sizes == nil {
		sizes = s.DefaultSizes
	}

	src := ico.Source{Data: []byte(req.SVG), URL: req.URL}
	out, err := s.pack(r.Context(), req.ID, src, sizes)
	if err != nil {
		status := statusFor(err)
		sendError(w, publicMessage(err, status), status)
		return
	}

	w.Header().Set("Content-Type", ico.MediaType)
	w.Header().Set("Content-Disposition", `attachment; filename="favicon.ico"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.Header().Set("X-Request-Id", req.ID)
	w.Write(out)
}

func (s *Server) decodeFaviconRequest(w http.ResponseWriter, r *http.Request) (types.FaviconRequest, int, error) {
	var req types.FaviconRequest

	max := s.MaxSVGBytes
	if max <= 0 {
		max = raster.DefaultMaxBytes
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, max+1024))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return req, http.StatusRequestEntityTooLarge, errors.New("Fichier trop volumineux")
		}
		return req, http.StatusBadRequest, errors.New("Lecture de la requête impossible")
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.Unmarshal(body, &req); err != nil {
			return req, http.StatusBadRequest, errors.New("JSON invalide")
		}
	} else {
		req.SVG = string(body)
	}

	if q := r.URL.Query().Get("sizes"); q != "" {
		sizes, err := config.ParseSizes(q)
		if err != nil {
			return req, http.StatusBadRequest, fmt.Errorf("Tailles invalides: %v", err)
		}
		req.Sizes = sizes
	}
	if id := r.URL.Query().Get("id"); id != "" && req.ID == "" {
		req.ID = id
	}

	if req.SVG == "" && req.URL == "" {
		return req, http.StatusBadRequest, errors.New("SVG manquant")
	}
	if int64(len(req.SVG)) > max {
		return req, http.StatusRequestEntityTooLarge, errors.New("Fichier trop volumineux")
	}
	return req, http.StatusOK, nil
}

// pack runs the packager and reports progress on the hub and in the stats
func (s *Server) pack(ctx context.Context, id string, src ico.Source, sizes []int) ([]byte, error) {
	var done int32
	p := &ico.Packager{
		Rasterizer: s.Rasterizer,
		Loader:     s.Loader,
		OnRasterized: func(size, index, byteLen int) {
			s.broadcast(types.WSMessage{
				Type:  "rasterized",
				ID:    id,
				Size:  size,
				Bytes: byteLen,
				Done:  int(atomic.AddInt32(&done, 1)),
				Total: len(sizes),
			})
		},
	}

	log := logrus.WithFields(logrus.Fields{"id": id, "sizes": sizes})
	log.Info("Packaging favicon")
	s.broadcast(types.WSMessage{Type: "started", ID: id, Sizes: sizes})

	out, err := p.Pack(ctx, src, sizes)
	if err != nil {
		log.WithError(err).Warn("Favicon packaging failed")
		s.stats().RecordFailure(err)
		s.broadcast(types.WSMessage{Type: "error", ID: id, Message: publicMessage(err, statusFor(err))})
		return nil, err
	}

	log.WithField("bytes", len(out)).Info("Favicon packaged")
	s.stats().RecordSuccess(len(out))
	s.broadcast(types.WSMessage{Type: "completed", ID: id, Bytes: len(out)})
	return out, nil
}

// SiteFaviconHandler serves this service's own favicon, built once from the embedded logo
func (s *Server) SiteFaviconHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		sendError(w, "Méthode non autorisée", http.StatusMethodNotAllowed)
		return
	}

	s.siteOnce.Do(func() {
		p := &ico.Packager{Rasterizer: s.Rasterizer}
		s.siteICO, s.siteErr = p.Pack(context.Background(), ico.Source{Data: web.LogoSVG}, s.DefaultSizes)
		if s.siteErr != nil {
			logrus.WithError(s.siteErr).Error("Failed to build site favicon")
		}
	})
	if s.siteErr != nil {
		sendError(w, "Favicon indisponible", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", ico.MediaType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(s.siteICO)
}

// statusFor maps packaging errors onto HTTP statuses
func statusFor(err error) int {
	var rerr *ico.RasterizationError
	switch {
	case errors.Is(err, raster.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case errors.Is(err, ico.ErrLoadSource), errors.As(err, &rerr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ico.ErrNoSizes), errors.Is(err, ico.ErrSizeOutOfRange):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// publicMessage is what clients see for a failed request. Source and decode
// errors stay in the logs since they can describe the server's filesystem.
func publicMessage(err error, status int) string {
	switch status {
	case http.StatusBadRequest:
		return err.Error()
	case http.StatusRequestEntityTooLarge:
		return "Fichier trop volumineux"
	case http.StatusServiceUnavailable:
		return "Requête annulée"
	case http.StatusUnprocessableEntity:
		if errors.Is(err, ico.ErrLoadSource) {
			return "Source SVG indisponible"
		}
		return "SVG illisible"
	}
	return "Erreur interne"
}
