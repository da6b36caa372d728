package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"icon-server/internal/ico"
	"icon-server/internal/state"
	"icon-server/internal/types"
	"icon-server/web"
)

// Broadcaster receives progress messages
type Broadcaster interface {
	Broadcast(msg types.WSMessage)
}

// Server holds the dependencies shared by the HTTP handlers
type Server struct {
	Rasterizer   ico.Rasterizer
	Loader       ico.SourceLoader
	Hub          Broadcaster
	Stats        *state.ServerState
	DefaultSizes []int
	MaxSVGBytes  int64

	siteOnce sync.Once
	siteICO  []byte
	siteErr  error
}

// Routes registers every endpoint on mux
func (s *Server) Routes(mux *http.ServeMux, ws http.Handler) {
	mux.Handle("/static/", http.FileServer(http.FS(web.Static)))
	mux.HandleFunc("/api/favicon", s.FaviconHandler)
	mux.HandleFunc("/api/inspect", s.InspectHandler)
	mux.HandleFunc("/api/state", s.StateHandler)
	mux.HandleFunc("/favicon.ico", s.SiteFaviconHandler)
	mux.HandleFunc("/styles.css", StylesHandler)
	if ws != nil {
		mux.Handle("/ws", ws)
	}
	// Catch-all handler for the main page (must be last)
	mux.HandleFunc("/", HomeHandler)
}

// GenerateID generates a unique request ID for progress messages
func GenerateID() string {
	now := time.Now()
	return fmt.Sprintf("ico_%d_%d", now.Unix(), now.Nanosecond())
}

// HomeHandler serves the main HTML page
func HomeHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(web.IndexHTML)
}

// StylesHandler serves the CSS styles
func StylesHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(web.StylesCSS)
}

// sendError sends an error response
func sendError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(types.Response{
		Success: false,
		Message: message,
	})
}

// sendJSON sends a 200 JSON response
func sendJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (s *Server) broadcast(msg types.WSMessage) {
	if s.Hub != nil {
		s.Hub.Broadcast(msg)
	}
}

func (s *Server) stats() *state.ServerState {
	if s.Stats == nil {
		return state.Global()
	}
	return s.Stats
}
