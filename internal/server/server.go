// Package server exposes the pipeline over HTTP for a charting frontend.
// The server does no data transformation of its own: it hands the uploaded
// payload to the pipeline and writes back whatever Result it produces,
// error channel included, always with status 200.
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/KaramelBytes/chartloom-cli/internal/pipeline"
)

// maxPayloadBytes caps uploads; base64 JSON beyond this is rejected before
// decoding.
const maxPayloadBytes = 16 << 20

// Server wires the HTTP boundary. It holds no mutable state; concurrent
// requests run fully independent pipeline invocations.
type Server struct {
	addr    string
	timeout time.Duration
	logger  *log.Logger
}

// New creates a server listening on addr. A nil logger falls back to the
// standard logger.
func New(addr string, timeoutSec int, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if timeoutSec <= 0 {
		timeoutSec = 60
	}
	return &Server{addr: addr, timeout: time.Duration(timeoutSec) * time.Second, logger: logger}
}

// Router builds the API routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/views", s.handleViews(pipeline.Run)).Methods(http.MethodPost)
	r.HandleFunc("/api/views/raw", s.handleViews(pipeline.RunRecords)).Methods(http.MethodPost)
	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	return r
}

// ListenAndServe blocks serving the API.
func (s *Server) ListenAndServe() error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.Router(),
		ReadTimeout:  s.timeout,
		WriteTimeout: s.timeout,
	}
	s.logger.Printf("listening on %s", s.addr)
	return srv.ListenAndServe()
}

func (s *Server) handleViews(run func([]byte) pipeline.Result) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes+1))
		if err != nil {
			s.logger.Printf("[%s] read body: %v", reqID, err)
			http.Error(w, "read body", http.StatusBadRequest)
			return
		}
		if len(payload) > maxPayloadBytes {
			s.logger.Printf("[%s] payload too large", reqID)
			http.Error(w, fmt.Sprintf("payload exceeds %d bytes", maxPayloadBytes), http.StatusRequestEntityTooLarge)
			return
		}

		res := run(payload)
		if res.OK() {
			s.logger.Printf("[%s] %s: %d bytes in, %d charting points", reqID, r.URL.Path, len(payload), len(res.Views.Line))
		} else {
			s.logger.Printf("[%s] %s: pipeline failed: %s", reqID, r.URL.Path, res.Error)
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(res); err != nil {
			s.logger.Printf("[%s] write response: %v", reqID, err)
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"status":"ok"}`)
}
