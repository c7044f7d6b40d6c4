package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"radiosync/internal/archive"
	"radiosync/internal/config"
	"radiosync/internal/logger"
)

type Server struct {
	ctx    context.Context
	jobMgr *JobManager
	config config.Config
	logger *logger.Logger
}

func NewServer(ctx context.Context, jobMgr *JobManager, cfg config.Config, log *logger.Logger) *Server {
	return &Server{
		ctx:    ctx,
		jobMgr: jobMgr,
		config: cfg,
		logger: log,
	}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Static files
	mux.Handle("/", http.FileServer(http.Dir("web/static")))

	// API endpoints
	mux.HandleFunc("/api/sync", s.handleSync)
	mux.HandleFunc("/api/jobs", s.handleListJobs)
	mux.HandleFunc("/api/jobs/", s.handleJobAction)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/ws", s.handleWebSocket)

	return s.loggingMiddleware(mux)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(statsForToday(s.config.ArchiveDir, s.logger))
}

// statsForToday replays today's archive file into its counters.
func statsForToday(archiveDir string, log *logger.Logger) archive.Stats {
	day := time.Now().Format("2006-01-02")
	state, err := archive.Load(archiveDir, day, log)
	if err != nil {
		log.Warn("Failed to load archive stats for %s: %v", day, err)
		return archive.Stats{}
	}
	return state.Stats
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
