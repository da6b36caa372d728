package types

import "github.com/gorilla/websocket"

// FaviconRequest is the JSON form of a favicon generation request
type FaviconRequest struct {
	SVG   string `json:"svg,omitempty"`
	URL   string `json:"url,omitempty"` // data:, http(s):// or inline markup
	Sizes []int  `json:"sizes,omitempty"`
	ID    string `json:"id,omitempty"` // client-chosen ID echoed in progress messages
}

// Response represents an API response
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// InspectEntry describes one directory entry of an uploaded ICO
type InspectEntry struct {
	Index    int    `json:"index"`
	Size     int    `json:"size"`
	Width    uint8  `json:"width"`
	Height   uint8  `json:"height"`
	Planes   uint16 `json:"planes"`
	BitCount uint16 `json:"bitCount"`
	Bytes    uint32 `json:"bytes"`
	Offset   uint32 `json:"offset"`
	PNG      bool   `json:"png"`
}

// InspectResponse is returned by the ICO inspection endpoint
type InspectResponse struct {
	Success bool           `json:"success"`
	Count   int            `json:"count"`
	Bytes   int            `json:"bytes"`
	Entries []InspectEntry `json:"entries"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string       `json:"type"` // "state", "started", "rasterized", "completed", "error"
	ID      string       `json:"id,omitempty"`
	Size    int          `json:"size,omitempty"`
	Sizes   []int        `json:"sizes,omitempty"`
	Bytes   int          `json:"bytes,omitempty"`
	Done    int          `json:"done,omitempty"`
	Total   int          `json:"total,omitempty"`
	Message string       `json:"message,omitempty"`
	State   *ServerStats `json:"state,omitempty"`
}

// ServerStats is a snapshot of generation counters
type ServerStats struct {
	Generated   int64  `json:"generated"`
	Failed      int64  `json:"failed"`
	BytesServed int64  `json:"bytesServed"`
	LastError   string `json:"lastError,omitempty"`
	StartedAt   string `json:"startedAt"`
	LastAt      string `json:"lastAt,omitempty"`
}

// WSClient represents a WebSocket client connection. Send is drained by
// the client's single writer goroutine.
type WSClient struct {
	Conn *websocket.Conn
	Send chan WSMessage
}
