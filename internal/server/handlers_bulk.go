package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/sarperhorata/remote-jobs-api-sub003/internal/bulk"
	"github.com/sarperhorata/remote-jobs-api-sub003/internal/ratelimit"
	"github.com/sarperhorata/remote-jobs-api-sub003/internal/server/middleware"
)

// nominalJobDuration feeds the initial completion estimate before any job
// has actually finished.
const nominalJobDuration = 30 * time.Second

// ---------------------------------------------------------------------
// Bulk Apply Handlers
// ---------------------------------------------------------------------

type StartBulkApplyRequest struct {
	Jobs        []bulk.JobSelection `json:"jobs" validate:"required,min=1,max=50,dive"`
	FormConfig  bulk.FormConfig     `json:"form_config"`
	RateLimitMs int                 `json:"rate_limit_ms,omitempty" validate:"omitempty,min=0"`
	MaxRetries  int                 `json:"max_retries,omitempty" validate:"omitempty,min=0,max=10"`
}

type StartBulkApplyResponse struct {
	TaskID              string    `json:"task_id"`
	Status              string    `json:"status"`
	TotalJobs           int       `json:"total_jobs"`
	EstimatedCompletion time.Time `json:"estimated_completion"`
}

func (s *Server) handleStartBulkApply(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err := s.rateLimiter.Allow(userID.String(), ratelimit.ActionStartBulkApply); err != nil {
		s.handleError(w, err)
		return
	}

	var req StartBulkApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	rateLimit := time.Duration(req.RateLimitMs) * time.Millisecond

	// The task outlives this request, so it must not inherit the request
	// context.
	task, err := s.orchestrator.Start(context.Background(), userID, req.Jobs, req.FormConfig, rateLimit, req.MaxRetries)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	s.jsonResponse(w, http.StatusAccepted, StartBulkApplyResponse{
		TaskID:              task.ID,
		Status:              "started",
		TotalJobs:           task.TotalJobs,
		EstimatedCompletion: task.InitialEstimate(nominalJobDuration),
	})
}

type BulkApplyStatusResponse struct {
	TaskID              string          `json:"task_id"`
	Status              bulk.TaskStatus `json:"status"`
	TotalJobs           int             `json:"total_jobs"`
	CompletedJobs       int             `json:"completed_jobs"`
	SuccessfulJobs      int             `json:"successful_jobs"`
	FailedJobs          int             `json:"failed_jobs"`
	InProgressJobs      int             `json:"in_progress_jobs"`
	OverallProgress     float64         `json:"overall_progress"`
	EstimatedCompletion *time.Time      `json:"estimated_completion,omitempty"`
}

func (s *Server) handleBulkApplyStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	task, err := s.registry.Snapshot(r.PathValue("task_id"), userID)
	if err != nil {
		s.handleError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, statusResponse(task))
}

func statusResponse(task bulk.Task) BulkApplyStatusResponse {
	return BulkApplyStatusResponse{
		TaskID:              task.ID,
		Status:              task.Status,
		TotalJobs:           task.TotalJobs,
		CompletedJobs:       task.CompletedJobs,
		SuccessfulJobs:      task.SuccessfulJobs,
		FailedJobs:          task.FailedJobs,
		InProgressJobs:      task.InProgressJobs,
		OverallProgress:     task.Progress(),
		EstimatedCompletion: task.EstimatedCompletion(time.Now().UTC()),
	}
}

type BulkApplySummary struct {
	SuccessRate float64 `json:"success_rate"`
}

type BulkApplyResultsResponse struct {
	TaskID      string           `json:"task_id"`
	Status      bulk.TaskStatus  `json:"status"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	Results     []bulk.JobResult `json:"results"`
	Summary     BulkApplySummary `json:"summary"`
}

func (s *Server) handleBulkApplyResults(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	task, err := s.registry.Snapshot(r.PathValue("task_id"), userID)
	if err != nil {
		s.handleError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, BulkApplyResultsResponse{
		TaskID:      task.ID,
		Status:      task.Status,
		StartedAt:   task.StartedAt,
		CompletedAt: task.CompletedAt,
		Results:     task.Results,
		Summary:     BulkApplySummary{SuccessRate: task.SuccessRate()},
	})
}

func (s *Server) handleCancelBulkApply(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	task, err := s.registry.Cancel(r.PathValue("task_id"), userID)
	if err != nil {
		s.handleError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"task_id": task.ID,
		"status":  task.Status,
	})
}

type BulkApplyHistoryEntry struct {
	TaskID         string          `json:"task_id"`
	Status         bulk.TaskStatus `json:"status"`
	TotalJobs      int             `json:"total_jobs"`
	CompletedJobs  int             `json:"completed_jobs"`
	SuccessfulJobs int             `json:"successful_jobs"`
	FailedJobs     int             `json:"failed_jobs"`
	StartedAt      time.Time       `json:"started_at"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
	CancelledAt    *time.Time      `json:"cancelled_at,omitempty"`
}

type BulkApplyHistoryResponse struct {
	Tasks []BulkApplyHistoryEntry `json:"tasks"`
	Total int                     `json:"total"`
}

func (s *Server) handleBulkApplyHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	tasks, total := s.registry.History(userID, limit, offset)

	entries := make([]BulkApplyHistoryEntry, 0, len(tasks))
	for _, task := range tasks {
		entries = append(entries, BulkApplyHistoryEntry{
			TaskID:         task.ID,
			Status:         task.Status,
			TotalJobs:      task.TotalJobs,
			CompletedJobs:  task.CompletedJobs,
			SuccessfulJobs: task.SuccessfulJobs,
			FailedJobs:     task.FailedJobs,
			StartedAt:      task.StartedAt,
			CompletedAt:    task.CompletedAt,
			CancelledAt:    task.CancelledAt,
		})
	}

	s.jsonResponse(w, http.StatusOK, BulkApplyHistoryResponse{Tasks: entries, Total: total})
}

// handleBulkApplyStream streams task progress as Server-Sent Events until
// the task reaches a terminal state or the client disconnects.
func (s *Server) handleBulkApplyStream(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	taskID := r.PathValue("task_id")
	if _, err := s.registry.Snapshot(taskID, userID); err != nil {
		s.handleError(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		task, err := s.registry.Snapshot(taskID, userID)
		if err != nil {
			sse.WriteError(err.Error())
			return
		}
		if err := sse.WriteEvent("progress", statusResponse(task)); err != nil {
			return
		}
		if task.Terminal() {
			sse.WriteComplete(task.ID, string(task.Status))
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

// queryInt reads an integer query parameter with a default.
func queryInt(r *http.Request, name string, defaultValue int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return defaultValue
	}
	return value
}
