package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/doclens/doclens/internal/radar"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin in development
		// In production, you should check against allowed origins
		return true
	},
}

// WebSocketMessage is the envelope for every message the scan stream
// sends: "scanning", "progress", "first_hit", "completed" or "error".
type WebSocketMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// wsConnWriter is the interface used for writing WebSocket messages.
type wsConnWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// scanWebSocketHandler streams radar scan progress over a WebSocket. The
// client sends one TermsRequest; the server replies with progress events
// as pages complete and a terminal report. Closing the connection cancels
// the scan between batches.
func (s *Server) scanWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("Scan WebSocket connection established", "remote_addr", r.RemoteAddr)

	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	_, data, err := conn.ReadMessage()
	if err != nil {
		slog.Error("Failed to read scan request", "error", err)
		return
	}
	websocketMessagesTotal.WithLabelValues("received").Inc()

	var req TermsRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendWebSocketMessage(conn, WebSocketMessage{Type: "error", Error: fmt.Sprintf("Failed to parse request: %v", err)})
		return
	}
	if req.DocumentID == "" {
		s.sendWebSocketMessage(conn, WebSocketMessage{Type: "error", Error: "document_id is required"})
		return
	}

	// Cancel the scan when the client goes away. The reader goroutine
	// unblocks on close; in-flight batch lookups finish and keep their
	// cache writes, but no further batches start.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
			websocketMessagesTotal.WithLabelValues("received").Inc()
		}
	}()

	s.runScanStream(ctx, conn, req)
}

func (s *Server) runScanStream(ctx context.Context, conn wsConnWriter, req TermsRequest) {
	scanner := radar.NewScanner(s.locator,
		radar.WithBatchSize(s.batchSize),
		radar.WithProgress(func(ev radar.Event) {
			s.sendWebSocketMessage(conn, WebSocketMessage{Type: "progress", Payload: ev})
		}),
		radar.WithFirstHit(func(page int) {
			s.sendWebSocketMessage(conn, WebSocketMessage{Type: "first_hit", Payload: map[string]int{"page": page}})
		}),
	)

	s.sendWebSocketMessage(conn, WebSocketMessage{Type: "scanning", Payload: map[string]string{"document_id": req.DocumentID}})

	start := time.Now()
	report, err := scanner.Scan(ctx, req.DocumentID, req.TermSet(), make(radar.Memo))
	if err != nil {
		lookupsTotal.WithLabelValues("scan", "error").Inc()
		s.sendWebSocketMessage(conn, WebSocketMessage{Type: "error", Error: fmt.Sprintf("Radar scan failed: %v", err)})
		return
	}

	lookupsTotal.WithLabelValues("scan", "success").Inc()
	lookupDuration.WithLabelValues("scan").Observe(time.Since(start).Seconds())

	s.sendWebSocketMessage(conn, WebSocketMessage{Type: "completed", Payload: report})
}

// sendWebSocketMessage marshals and sends one message, counting it.
func (s *Server) sendWebSocketMessage(conn wsConnWriter, msg WebSocketMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("Failed to marshal WebSocket message", "error", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("Failed to send WebSocket message", "error", err)
		return
	}
	websocketMessagesTotal.WithLabelValues("sent").Inc()
}
