package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/abhibongale/presto/internal/filter"
	"github.com/abhibongale/presto/pkg/model"
)

type registerStageRequest struct {
	StageID int `json:"stageId"`
	Attempt int `json:"attempt"`
}

func (s *Server) handleRegisterStage(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req registerStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("invalid JSON body: "+err.Error()))
		return
	}
	if req.StageID < 0 || req.Attempt < 0 {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("stageId and attempt must be non-negative"))
		return
	}

	id := model.StageExecutionID{StageID: req.StageID, ID: req.Attempt}
	se, err := s.tracker.Register(id)
	if err != nil {
		respondError(w, reqID, http.StatusConflict,
			&model.APIError{Code: model.ErrConflict, Message: err.Error()})
		return
	}

	respondCreated(w, reqID, map[string]any{
		"id":    id.String(),
		"state": se.State(),
	})
}

// stageRecord is one entry in the live-stage listing.
type stageRecord struct {
	ID      string                       `json:"id"`
	Summary *model.StageExecutionSummary `json:"summary"`
}

// handleListStages lists live stage executions. An optional ?where= parameter
// holds a JavaScript predicate over (id, state, stats, tasks); executions it
// rejects are dropped before pagination.
func (s *Server) handleListStages(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var pred *filter.Filter
	if where := r.URL.Query().Get("where"); where != "" {
		var err error
		pred, err = filter.Compile(where)
		if err != nil {
			respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(err.Error()))
			return
		}
	}

	opts := listOptionsFromQuery(r)

	var records []stageRecord
	for _, se := range s.tracker.List() {
		summary, err := se.Summary()
		if err != nil {
			respondError(w, reqID, http.StatusInternalServerError,
				&model.APIError{Code: model.ErrInternal, Message: err.Error()})
			return
		}
		key := se.ID().String()
		if pred != nil {
			match, err := pred.Matches(key, summary)
			if err != nil {
				respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(err.Error()))
				return
			}
			if !match {
				continue
			}
		}
		records = append(records, stageRecord{ID: key, Summary: summary})
	}

	total := len(records)
	records = paginate(records, opts)

	respondList(w, reqID, records, &model.Pagination{
		Total:   total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		HasMore: opts.Offset+len(records) < total,
	})
}

// handleGetSummary returns the summary of one stage execution. Live
// executions are aggregated on demand; finalized ones come from the store.
// For a stage the coordinator never scheduled, ?unscheduled=true yields the
// synthetic summary (ABORTED when query_done=true, PLANNED otherwise).
func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	key := chi.URLParam(r, "id")

	if se := s.tracker.Get(key); se != nil {
		summary, err := se.Summary()
		if err != nil {
			respondError(w, reqID, http.StatusInternalServerError,
				&model.APIError{Code: model.ErrInternal, Message: err.Error()})
			return
		}
		s.maybeFinalize(r, key, summary)
		respondOK(w, reqID, summary)
		return
	}

	if s.store != nil {
		summary, err := s.store.GetSummary(r.Context(), key)
		if err != nil {
			respondError(w, reqID, http.StatusInternalServerError,
				&model.APIError{Code: model.ErrInternal, Message: err.Error()})
			return
		}
		if summary != nil {
			respondOK(w, reqID, summary)
			return
		}
	}

	if r.URL.Query().Get("unscheduled") == "true" {
		id, err := model.ParseStageExecutionID(key)
		if err != nil {
			respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(err.Error()))
			return
		}
		queryDone := r.URL.Query().Get("query_done") == "true"
		respondOK(w, reqID, model.UnscheduledStageExecutionSummary(id.StageID, queryDone))
		return
	}

	respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("stage execution", key))
}

type transitionRequest struct {
	State        model.StageExecutionState   `json:"state"`
	FailureCause *model.ExecutionFailureInfo `json:"failureCause,omitempty"`
}

func (s *Server) handleTransitionState(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	key := chi.URLParam(r, "id")

	se := s.tracker.Get(key)
	if se == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("stage execution", key))
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("invalid JSON body: "+err.Error()))
		return
	}
	if req.FailureCause != nil && req.State != model.StageFailed {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("failureCause is only valid with state FAILED"))
		return
	}

	if err := se.TransitionTo(req.State, req.FailureCause); err != nil {
		var invalid *model.InvalidTransitionError
		if errors.As(err, &invalid) {
			respondError(w, reqID, http.StatusConflict,
				&model.APIError{Code: model.ErrConflict, Message: err.Error()})
			return
		}
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: err.Error()})
		return
	}
	s.logger.Info("stage transitioned", "stage_execution", key, "state", req.State)

	summary, err := se.Summary()
	if err != nil {
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: err.Error()})
		return
	}
	s.maybeFinalize(r, key, summary)
	respondOK(w, reqID, summary)
}

func (s *Server) handleIngestTaskReport(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	key := chi.URLParam(r, "id")

	se := s.tracker.Get(key)
	if se == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("stage execution", key))
		return
	}

	var report model.TaskReport
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("invalid JSON body: "+err.Error()))
		return
	}
	if report.TaskID == "" {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("taskId is required"))
		return
	}
	if report.Status.State == "" {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("status.state is required"))
		return
	}

	se.RecordTaskReport(report)

	respondOK(w, reqID, map[string]any{
		"id":        key,
		"taskCount": se.TaskCount(),
	})
}

func (s *Server) handleListTaskReports(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	key := chi.URLParam(r, "id")

	se := s.tracker.Get(key)
	if se == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("stage execution", key))
		return
	}

	summary, err := se.Summary()
	if err != nil {
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: err.Error()})
		return
	}

	respondList(w, reqID, summary.Tasks, &model.Pagination{
		Total: len(summary.Tasks),
		Limit: len(summary.Tasks),
	})
}

// schedulingRequest carries scheduler-side telemetry that tasks never see.
type schedulingRequest struct {
	CompleteMillis     int64  `json:"completeMillis,omitempty"`
	GetSplitTimeNanos  *int64 `json:"getSplitTimeNanos,omitempty"`
	CompletedLifespans *int   `json:"completedLifespans,omitempty"`
	TotalLifespans     *int   `json:"totalLifespans,omitempty"`
}

func (s *Server) handleRecordScheduling(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	key := chi.URLParam(r, "id")

	se := s.tracker.Get(key)
	if se == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("stage execution", key))
		return
	}

	var req schedulingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("invalid JSON body: "+err.Error()))
		return
	}

	if req.CompleteMillis > 0 {
		se.SetSchedulingComplete(req.CompleteMillis)
	}
	if req.GetSplitTimeNanos != nil {
		se.RecordGetSplitTime(*req.GetSplitTimeNanos)
	}
	if req.CompletedLifespans != nil && req.TotalLifespans != nil {
		se.SetLifespans(*req.CompletedLifespans, *req.TotalLifespans)
	}

	respondOK(w, reqID, map[string]any{"id": key})
}

type metricRequest struct {
	Name  string            `json:"name"`
	Unit  model.RuntimeUnit `json:"unit"`
	Value int64             `json:"value"`
}

func (s *Server) handleRecordMetric(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	key := chi.URLParam(r, "id")

	se := s.tracker.Get(key)
	if se == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("stage execution", key))
		return
	}

	var req metricRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("invalid JSON body: "+err.Error()))
		return
	}
	if req.Name == "" {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("name is required"))
		return
	}
	if req.Unit == "" {
		req.Unit = model.RuntimeUnitNone
	}

	se.AddStageMetric(req.Name, req.Unit, req.Value)
	respondOK(w, reqID, map[string]any{"id": key, "metric": req.Name})
}

// maybeFinalize persists and archives a summary that can never change again.
// Failures are logged, not surfaced: the caller already has its summary and
// finalization will be retried on the next read.
func (s *Server) maybeFinalize(r *http.Request, key string, summary *model.StageExecutionSummary) {
	if !summary.IsFinal() {
		return
	}
	if s.store != nil {
		if err := s.store.SaveSummary(r.Context(), key, summary); err != nil {
			s.logger.Error("persist finalized summary", "stage_execution", key, "error", err)
			return
		}
	}
	if err := s.archiver.Archive(r.Context(), key, summary); err != nil {
		s.logger.Error("archive finalized summary", "stage_execution", key, "error", err)
	}
}

func listOptionsFromQuery(r *http.Request) model.ListOptions {
	opts := model.DefaultListOptions()
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Offset = n
		}
	}
	opts.State = q.Get("state")
	opts.Clamp()
	return opts
}

func paginate(records []stageRecord, opts model.ListOptions) []stageRecord {
	if opts.Offset >= len(records) {
		return nil
	}
	records = records[opts.Offset:]
	if len(records) > opts.Limit {
		records = records[:opts.Limit]
	}
	return records
}
