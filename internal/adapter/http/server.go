package http

import (
	"net/http"

	"github.com/bnema/cheval/internal/adapter/http/middleware"
	"github.com/bnema/cheval/internal/service"
)

type Server struct {
	mux        *http.ServeMux
	handlers   *Handlers
	sseHandler *SSEHandler
}

func NewServer(jobs JobService, batch BatchService, history HistoryService, eventBus *service.EventBus, batchSuffix string) *Server {
	s := &Server{
		mux:        http.NewServeMux(),
		handlers:   NewHandlers(jobs, batch, history, batchSuffix),
		sseHandler: NewSSEHandler(eventBus),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /api/jobs", s.handlers.StartJob())
	s.mux.HandleFunc("POST /api/jobs/{id}/cancel", s.handlers.CancelJob())
	s.mux.HandleFunc("GET /api/status", s.handlers.Status())

	s.mux.HandleFunc("GET /api/runs", s.handlers.ListRuns())
	s.mux.HandleFunc("GET /api/runs/{id}", s.handlers.GetRun())

	s.mux.HandleFunc("POST /api/batches", s.handlers.StartBatch())
	s.mux.HandleFunc("POST /api/batches/stop", s.handlers.StopBatch())
	s.mux.HandleFunc("GET /api/batches/{id}/runs", s.handlers.BatchRuns())

	s.mux.HandleFunc("GET /events/{id}", s.sseHandler.Events())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	middleware.SecurityHeaders(middleware.JSONOnly(s.mux)).ServeHTTP(w, r)
}
