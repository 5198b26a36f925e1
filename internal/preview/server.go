// Package preview serves read-only views of the VTF files below a root
// directory over HTTP.
package preview

import (
	"context"
	"errors"
	"net/http"
	"path"
	"path/filepath"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// shutdownTimeout bounds the graceful shutdown in Run.
const shutdownTimeout = 5 * time.Second

// Server exposes textures under root. Each request loads and decodes its
// file independently.
type Server struct {
	root   string
	logger *zap.Logger
	router *mux.Router
}

// New creates a server for the textures below root.
func New(root string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{root: root, logger: logger, router: mux.NewRouter()}
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/list", s.handleList).Methods(http.MethodGet)
	api.HandleFunc("/info/{path:.+}", s.handleInfo).Methods(http.MethodGet)
	api.HandleFunc("/thumbnail/{path:.+}", s.handleThumbnail).Methods(http.MethodGet)
	api.HandleFunc("/frame/{path:.+}", s.handleFrame).Methods(http.MethodGet)

	return s
}

// Handler returns the router wrapped with panic recovery, compression and
// access logging.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	h = handlers.CompressHandler(h)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(zap.NewStdLog(s.logger)))(h)
	h = handlers.CombinedLoggingHandler(zap.NewStdLog(s.logger).Writer(), h)

	return h
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("preview server listening", zap.String("addr", addr), zap.String("root", s.root))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("preview server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// resolve maps a slash-separated request path to a file below root. The
// result never escapes root.
func (s *Server) resolve(name string) string {
	clean := path.Clean("/" + name)
	return filepath.Join(s.root, filepath.FromSlash(clean))
}
