package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"f0oster/adspyview/gateway"

	"github.com/apex/log"
)

const shutdownTimeout = 5 * time.Second

// Server exposes a HistoryReader over the adSpy JSON API, so the viewer (or
// the original web frontend) can read history through a read-only process.
// SD diff requests are forwarded to differ; without one they answer 501.
type Server struct {
	reader gateway.HistoryReader
	differ gateway.SDDiffer
	mux    *http.ServeMux
	addr   string
}

// NewServer creates a new web server instance. differ may be nil.
func NewServer(reader gateway.HistoryReader, differ gateway.SDDiffer, addr string) *Server {
	s := &Server{
		reader: reader,
		differ: differ,
		mux:    http.NewServeMux(),
		addr:   addr,
	}
	s.registerRoutes()
	return s
}

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/objects", s.handleListObjects)
	s.mux.HandleFunc("GET /api/objects/{id}", s.handleGetObject)
	s.mux.HandleFunc("GET /api/objects/{id}/timeline", s.handleGetObjectTimeline)
	s.mux.HandleFunc("GET /api/objects/{id}/versions/{usn}/changes", s.handleGetVersionChanges)
	s.mux.HandleFunc("POST /api/sddiff", s.handleSDDiff)
	s.mux.HandleFunc("GET /api/object-types", s.handleGetObjectTypes)
}

// Start listens until ctx is cancelled, then shuts the server down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", s.addr).Info("starting web server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Handler returns the HTTP handler for use with custom servers.
func (s *Server) Handler() http.Handler {
	return s.mux
}
