package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"radiosync/internal/config"
	"radiosync/internal/logger"
)

func newWebSocketTest(t *testing.T) (*Server, *JobManager, *httptest.Server) {
	t.Helper()
	jm := NewJobManager()
	srv := NewServer(context.Background(), jm, config.DefaultConfig(), logger.New(false))
	ts := httptest.NewServer(http.HandlerFunc(srv.handleWebSocket))
	t.Cleanup(ts.Close)
	return srv, jm, ts
}

func dialJob(t *testing.T, ts *httptest.Server, jobID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/?job_id=" + jobID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketRequiresJobID(t *testing.T) {
	_, _, ts := newWebSocketTest(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("dial without job_id should fail")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Errorf("handshake response = %+v, want 400", resp)
	}
}

func TestWebSocketStreamsUntilTerminal(t *testing.T) {
	_, jm, ts := newWebSocketTest(t)
	job := jm.CreateJob("https://example.org/playing-now", config.DefaultConfig())

	conn := dialJob(t, ts, job.ID)

	// Initial snapshot arrives before any update
	var resp JobResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("reading initial snapshot: %v", err)
	}
	if resp.ID != job.ID || resp.Status != StatusPending {
		t.Errorf("snapshot = %+v, want pending job %s", resp, job.ID)
	}

	jm.UpdateJob(job.ID, func(j *Job) {
		j.Status = StatusCompleted
		j.UpToDate = true
		j.Stats.Total = 7
	})

	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("reading terminal update: %v", err)
	}
	if resp.Status != StatusCompleted || !resp.UpToDate || resp.Stats.Total != 7 {
		t.Errorf("update = %+v, want completed up-to-date with stats", resp)
	}

	// Terminal frame ends the stream
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&resp); err == nil {
		t.Error("stream should close after the terminal frame")
	}
}

func TestWebSocketFinishedJobGetsOneFrame(t *testing.T) {
	_, jm, ts := newWebSocketTest(t)
	job := jm.CreateJob("https://example.org/playing-now", config.DefaultConfig())
	jm.UpdateJob(job.ID, func(j *Job) {
		j.Status = StatusFailed
		j.Error = "station unreachable"
	})

	conn := dialJob(t, ts, job.ID)

	var resp JobResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}
	if resp.Status != StatusFailed || resp.Error != "station unreachable" {
		t.Errorf("snapshot = %+v, want failed job", resp)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&resp); err == nil {
		t.Error("stream should close immediately for a finished job")
	}
}
