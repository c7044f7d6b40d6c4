package web

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for simplicity
	},
}

// handleWebSocket streams job snapshots for ?job_id=... until the job
// reaches a terminal state, the client disconnects, or the server shuts
// down. Every frame is a full JobResponse so clients never have to merge
// deltas.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("job_id")
	if jobID == "" {
		http.Error(w, "job_id is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates := s.jobMgr.Subscribe(jobID)
	defer s.jobMgr.Unsubscribe(jobID, updates)

	// Initial snapshot so the client renders without waiting for the
	// next update. A job that already finished gets one frame and the
	// stream closes.
	if job, err := s.jobMgr.GetJob(jobID); err == nil {
		if err := s.writeJob(conn, job); err != nil {
			return
		}
		if isTerminal(job.Status) {
			return
		}
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case job, ok := <-updates:
			if !ok {
				return
			}

			if err := s.writeJob(conn, job); err != nil {
				s.logger.Error("Failed to write WebSocket message: %v", err)
				return
			}

			if isTerminal(job.Status) {
				return
			}

		case <-ticker.C:
			// Keepalive so idle syncs don't drop the connection
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Server) writeJob(conn *websocket.Conn, job *Job) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(s.jobToResponse(job))
}

// isTerminal reports whether a job will receive no further updates.
func isTerminal(status JobStatus) bool {
	return status == StatusCompleted || status == StatusFailed || status == StatusCancelled
}
