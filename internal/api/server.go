// Package api exposes an executor over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/aristath/deadline/internal/scheduler"
)

// Server routes HTTP requests to a single executor.
type Server struct {
	r      *chi.Mux
	exec   *scheduler.Executor
	logger zerolog.Logger
}

// NewServer builds the router for exec.
func NewServer(exec *scheduler.Executor, logger zerolog.Logger) *Server {
	r := chi.NewRouter()
	s := &Server{r: r, exec: exec, logger: logger}

	r.Use(middleware.RequestID, middleware.RealIP, s.requestLogger, middleware.Recoverer)

	r.Get("/health", s.health)
	r.Route("/api", func(r chi.Router) {
		r.Post("/tasks", s.addTask)
		r.Post("/tick", s.tick)
		r.Post("/run", s.run)
		r.Post("/undo", s.undo)
		r.Get("/report", s.report)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.r.ServeHTTP(w, r)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type addTaskReq struct {
	ID       string `json:"id"`
	Duration int    `json:"duration"`
	Deadline int    `json:"deadline"`
	Value    int    `json:"value"`
}

func (s *Server) addTask(w http.ResponseWriter, r *http.Request) {
	var req addTaskReq
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	err := s.exec.AddTask(req.ID, req.Duration, req.Deadline, req.Value)
	switch {
	case errors.Is(err, scheduler.ErrDuplicateTask):
		writeError(w, http.StatusConflict, err)
		return
	case errors.Is(err, scheduler.ErrInvalidTask):
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusCreated, taskView{
		ID: req.ID, Duration: req.Duration, Deadline: req.Deadline, Value: req.Value,
	})
}

func (s *Server) tick(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newSnapshotView(s.exec.Tick()))
}

func (s *Server) run(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newSnapshotView(s.exec.RunToCompletion()))
}

type undoResp struct {
	Result   string       `json:"result"`
	Snapshot snapshotView `json:"snapshot"`
}

func (s *Server) undo(w http.ResponseWriter, r *http.Request) {
	res, err := s.exec.Undo()
	if errors.Is(err, scheduler.ErrNothingToUndo) {
		writeError(w, http.StatusConflict, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, undoResp{Result: res.String(), Snapshot: newSnapshotView(s.exec.Snapshot())})
}

func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newReportView(s.exec.Report()))
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

type errorResp struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, errorResp{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
