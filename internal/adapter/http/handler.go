package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/bnema/cheval/internal/adapter/http/validation"
	"github.com/bnema/cheval/internal/domain"
	"github.com/bnema/cheval/internal/infrastructure/logger"
	"github.com/bnema/cheval/internal/port"
	"github.com/bnema/cheval/internal/service"
	"github.com/bnema/cheval/internal/synth"
)

type JobService interface {
	Start(ctx context.Context, op service.Operation, options json.RawMessage, obs port.Observer) (string, error)
	Cancel(id string) error
	Current() string
	Status() domain.RunStatus
}

type BatchService interface {
	Start(files []string, tmpl synth.BatchTemplate, obs port.Observer) (string, error)
	Stop() error
	Status() service.BatchStatus
}

type HistoryService interface {
	List(ctx context.Context, limit int) ([]*domain.Run, error)
	Get(ctx context.Context, id string) (*domain.Run, error)
	Batch(ctx context.Context, batchID string) ([]*domain.Run, error)
}

const (
	maxBodyBytes    = 1 << 20
	defaultRunLimit = 50
	maxRunLimit     = 500
)

type Handlers struct {
	jobs        JobService
	batch       BatchService
	history     HistoryService
	batchSuffix string
}

func NewHandlers(jobs JobService, batch BatchService, history HistoryService, batchSuffix string) *Handlers {
	return &Handlers{jobs: jobs, batch: batch, history: history, batchSuffix: batchSuffix}
}

type jobRequest struct {
	Operation service.Operation `json:"operation"`
	Options   json.RawMessage   `json:"options"`
}

type startedResponse struct {
	ID     string `json:"id"`
	Events string `json:"events"`
}

func (h *Handlers) StartJob() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req jobRequest
		if !decodeBody(w, r, &req) {
			return
		}
		options := req.Options
		if req.Operation == service.OpDownload {
			var err error
			if options, err = sanitizeDownload(options); err != nil {
				writeError(w, err)
				return
			}
		}

		// The run outlives the request, so it must not inherit its context.
		id, err := h.jobs.Start(context.WithoutCancel(r.Context()), req.Operation, options, nil)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, startedResponse{ID: id, Events: "/events/" + id})
	}
}

// sanitizeDownload cleans the user's output template in place.
func sanitizeDownload(options json.RawMessage) (json.RawMessage, error) {
	if len(options) == 0 {
		return options, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(options, &fields); err != nil {
		return nil, domain.NewValidationError("options", "%v", err)
	}
	raw, ok := fields["template"]
	if !ok {
		return options, nil
	}
	var tmpl string
	if err := json.Unmarshal(raw, &tmpl); err != nil {
		return nil, domain.NewValidationError("template", "must be a string")
	}
	clean, err := validation.SanitizeTemplate(tmpl)
	if err != nil {
		return nil, domain.NewValidationError("template", "%v", err)
	}
	if fields["template"], err = json.Marshal(clean); err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

func (h *Handlers) CancelJob() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.jobs.Cancel(r.PathValue("id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

type statusResponse struct {
	Runner     domain.RunStatus    `json:"runner"`
	CurrentRun string              `json:"current_run,omitempty"`
	Batch      service.BatchStatus `json:"batch"`
}

func (h *Handlers) Status() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, statusResponse{
			Runner:     h.jobs.Status(),
			CurrentRun: h.jobs.Current(),
			Batch:      h.batch.Status(),
		})
	}
}

func (h *Handlers) ListRuns() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultRunLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				writeError(w, domain.NewValidationError("limit", "must be a positive integer"))
				return
			}
			limit = min(n, maxRunLimit)
		}
		runs, err := h.history.List(r.Context(), limit)
		if err != nil {
			writeError(w, err)
			return
		}
		if runs == nil {
			runs = []*domain.Run{}
		}
		writeJSON(w, http.StatusOK, runs)
	}
}

func (h *Handlers) GetRun() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := h.history.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, run)
	}
}

type batchRequest struct {
	// Inputs are files or folders; folders are scanned recursively.
	Inputs   []string            `json:"inputs"`
	Template synth.BatchTemplate `json:"template"`
}

func (h *Handlers) StartBatch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req batchRequest
		if !decodeBody(w, r, &req) {
			return
		}
		files, err := service.ExpandInputs(req.Inputs)
		if err != nil {
			writeError(w, domain.NewValidationError("inputs", "%v", err))
			return
		}

		tmpl := req.Template
		tmpl.Suffix = validation.SanitizeSuffix(tmpl.Suffix)
		if tmpl.Suffix == "" {
			tmpl.Suffix = h.batchSuffix
		}

		id, err := h.batch.Start(files, tmpl, nil)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, startedResponse{ID: id, Events: "/events/" + id})
	}
}

func (h *Handlers) StopBatch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.batch.Stop(); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

func (h *Handlers) BatchRuns() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runs, err := h.history.Batch(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		if runs == nil {
			runs = []*domain.Run{}
		}
		writeJSON(w, http.StatusOK, runs)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, domain.NewValidationError("body", "%v", err))
		return false
	}
	return true
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}
	var status int

	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		resp.Field = verr.Field
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrBusy), errors.Is(err, domain.ErrNotRunning):
		status = http.StatusConflict
	default:
		logger.Error.Printf("http: %v", err)
		status = http.StatusInternalServerError
		resp.Error = "internal error"
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn.Printf("http: encode response: %v", err)
	}
}
