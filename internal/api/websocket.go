// websocket.go - WebSocket push of extraction job progress
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/admitcast/backend/internal/models"
)

// WebSocket message types for the job-watch protocol.
const (
	// Client -> Server
	MsgTypeWatch = "watch"
	MsgTypePing  = "ping"

	// Server -> Client
	MsgTypeProgress = "progress"
	MsgTypeComplete = "complete"
	MsgTypeError    = "error"
	MsgTypePong     = "pong"
)

// WSMessage is the envelope for both directions.
type WSMessage struct {
	Type      string          `json:"type"`
	JobID     string          `json:"jobId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// WebSocketHandler upgrades connections and streams job progress to
// watching clients.
type WebSocketHandler struct {
	jobs     JobManager
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a WebSocket handler bound to the job manager.
func NewWebSocketHandler(jobs JobManager) *WebSocketHandler {
	return &WebSocketHandler{
		jobs: jobs,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// HandleWS serves the /ws endpoint. A client sends {"type":"watch",
// "jobId":...} and receives progress messages until the job finishes.
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return nil
		}

		switch msg.Type {
		case MsgTypePing:
			h.send(conn, WSMessage{Type: MsgTypePong})
		case MsgTypeWatch:
			if msg.JobID == "" {
				h.sendError(conn, "", "missing jobId")
				continue
			}
			h.watchJob(conn, msg.JobID)
		default:
			h.sendError(conn, msg.JobID, "unknown message type: "+msg.Type)
		}
	}
}

// watchJob pushes progress snapshots until the job reaches a terminal
// status.
func (h *WebSocketHandler) watchJob(conn *websocket.Conn, jobID string) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	timeout := time.NewTimer(5 * time.Minute)
	defer timeout.Stop()

	for {
		job, ok := h.jobs.GetJob(jobID)
		if !ok {
			h.sendError(conn, jobID, "job not found")
			return
		}
		h.jobs.TouchJob(jobID)

		payload, _ := json.Marshal(job)
		msgType := MsgTypeProgress
		done := job.Status == models.JobStatusComplete || job.Status == models.JobStatusError
		if done {
			msgType = MsgTypeComplete
		}
		if !h.send(conn, WSMessage{Type: msgType, JobID: jobID, Payload: payload}) || done {
			return
		}

		select {
		case <-ticker.C:
		case <-timeout.C:
			h.sendError(conn, jobID, "watch timeout")
			return
		}
	}
}

func (h *WebSocketHandler) send(conn *websocket.Conn, msg WSMessage) bool {
	msg.Timestamp = time.Now().UnixMilli()
	return conn.WriteJSON(msg) == nil
}

func (h *WebSocketHandler) sendError(conn *websocket.Conn, jobID, message string) {
	payload, _ := json.Marshal(map[string]string{"message": message})
	h.send(conn, WSMessage{Type: MsgTypeError, JobID: jobID, Payload: payload})
}
