package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"radiosync/internal/archive"
	"radiosync/internal/pipeline"
	"radiosync/internal/scraper"
	"radiosync/internal/spotify"
)

type SyncRequest struct {
	StationURL string `json:"station_url"`
}

type JobResponse struct {
	ID          string        `json:"id"`
	StationURL  string        `json:"station_url"`
	Status      JobStatus     `json:"status"`
	Progress    int           `json:"progress"`
	Total       int           `json:"total"`
	Stats       archive.Stats `json:"stats"`
	UpToDate    bool          `json:"up_to_date"`
	Error       string        `json:"error,omitempty"`
	CreatedAt   string        `json:"created_at"`
	StartedAt   *string       `json:"started_at,omitempty"`
	CompletedAt *string       `json:"completed_at,omitempty"`
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// An empty body falls back to the configured station
	stationURL := req.StationURL
	if stationURL == "" {
		stationURL = s.config.StationURL
	}
	if stationURL == "" {
		http.Error(w, "Station URL is required", http.StatusBadRequest)
		return
	}

	jobConfig := s.config
	jobConfig.StationURL = stationURL

	job := s.jobMgr.CreateJob(stationURL, jobConfig)
	s.logger.Info("Created job %s for station: %s", job.ID, stationURL)

	go s.processJob(job)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.jobToResponse(job))
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	jobs := s.jobMgr.ListJobs()
	responses := make([]*JobResponse, len(jobs))
	for i, job := range jobs {
		responses[i] = s.jobToResponse(job)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(responses)
}

func (s *Server) handleJobAction(w http.ResponseWriter, r *http.Request) {
	// Extract job ID from path: /api/jobs/{id} or /api/jobs/{id}/cancel
	path := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Job ID required", http.StatusBadRequest)
		return
	}

	jobID := parts[0]

	// Handle GET /api/jobs/{id}
	if r.Method == http.MethodGet && len(parts) == 1 {
		job, err := s.jobMgr.GetJob(jobID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(s.jobToResponse(job))
		return
	}

	// Handle POST /api/jobs/{id}/cancel
	if r.Method == http.MethodPost && len(parts) == 2 && parts[1] == "cancel" {
		job, err := s.jobMgr.GetJob(jobID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		if job.Cancel != nil {
			job.Cancel()
		}

		s.jobMgr.UpdateJob(jobID, func(j *Job) {
			j.Status = StatusCancelled
		})

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "cancelled"})
		return
	}

	http.Error(w, "Invalid request", http.StatusBadRequest)
}

func (s *Server) processJob(job *Job) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.jobMgr.UpdateJob(job.ID, func(j *Job) {
		j.Cancel = cancel
		j.Status = StatusRunning
	})

	s.logger.Info("Starting job %s", job.ID)

	src := scraper.New(job.Config.StationURL, s.logger)
	cat := spotify.New(job.Config.SpotifyClientID, job.Config.SpotifyClientSecret)

	hooks := pipeline.Hooks{
		OnSongsScraped: func(total int) {
			s.jobMgr.UpdateJob(job.ID, func(j *Job) {
				j.Total = total
			})
		},
		OnProgress: func() {
			s.jobMgr.UpdateJob(job.ID, func(j *Job) {
				j.Progress++
			})
		},
		OnWarning: func(msg string) {
			s.logger.Warn("Job %s: %s", job.ID, msg)
		},
	}

	err := pipeline.Run(ctx, job.Config, s.logger, src, cat, hooks)

	stats := statsForToday(job.Config.ArchiveDir, s.logger)

	switch {
	case errors.Is(err, pipeline.ErrUpToDate):
		// A playlist that already has everything is a success
		s.jobMgr.UpdateJob(job.ID, func(j *Job) {
			j.Status = StatusCompleted
			j.UpToDate = true
			j.Stats = stats
		})
		s.logger.Info("Job %s completed: playlist already up to date", job.ID)
	case errors.Is(err, context.Canceled):
		s.jobMgr.UpdateJob(job.ID, func(j *Job) {
			j.Status = StatusCancelled
			j.Stats = stats
		})
		s.logger.Info("Job %s cancelled", job.ID)
	case err != nil:
		s.logger.Error("Job %s failed: %v", job.ID, err)
		s.jobMgr.UpdateJob(job.ID, func(j *Job) {
			j.Status = StatusFailed
			j.Error = err.Error()
			j.Stats = stats
		})
	default:
		s.jobMgr.UpdateJob(job.ID, func(j *Job) {
			j.Status = StatusCompleted
			j.Stats = stats
		})
		s.logger.Info("Job %s completed successfully", job.ID)
	}
}

func (s *Server) jobToResponse(job *Job) *JobResponse {
	resp := &JobResponse{
		ID:         job.ID,
		StationURL: job.StationURL,
		Status:     job.Status,
		Progress:   job.Progress,
		Total:      job.Total,
		Stats:      job.Stats,
		UpToDate:   job.UpToDate,
		Error:      job.Error,
		CreatedAt:  job.CreatedAt.Format("2006-01-02 15:04:05"),
	}

	if job.StartedAt != nil {
		started := job.StartedAt.Format("2006-01-02 15:04:05")
		resp.StartedAt = &started
	}

	if job.CompletedAt != nil {
		completed := job.CompletedAt.Format("2006-01-02 15:04:05")
		resp.CompletedAt = &completed
	}

	return resp
}
