package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"icon-server/internal/ico"
	"icon-server/internal/types"
)

// maxICOBytes bounds uploads to the inspect endpoint
const maxICOBytes = 8 << 20

// InspectHandler parses an uploaded ICO and reports its directory
func (s *Server) InspectHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, "Méthode non autorisée", http.StatusMethodNotAllowed)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxICOBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			sendError(w, "Fichier trop volumineux", http.StatusRequestEntityTooLarge)
			return
		}
		sendError(w, "Lecture de la requête impossible", http.StatusBadRequest)
		return
	}

	icon, err := ico.Parse(data)
	if err != nil {
		logrus.WithError(err).Info("Rejected ICO upload")
		sendError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	resp := types.InspectResponse{
		Success: true,
		Count:   len(icon.Entries),
		Bytes:   len(data),
		Entries: make([]types.InspectEntry, len(icon.Entries)),
	}
	for i, e := range icon.Entries {
		resp.Entries[i] = types.InspectEntry{
			Index:    i,
			Size:     e.Size(),
			Width:    e.Width,
			Height:   e.Height,
			Planes:   e.Planes,
			BitCount: e.BitCount,
			Bytes:    e.BytesInRes,
			Offset:   e.ImageOffset,
			PNG:      icon.IsPNG(i),
		}
	}
	sendJSON(w, resp)
}

// StateHandler returns the generation counters
func (s *Server) StateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, "Méthode non autorisée", http.StatusMethodNotAllowed)
		return
	}
	sendJSON(w, s.stats().Snapshot())
}
