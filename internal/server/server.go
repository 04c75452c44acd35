// Package server serves the browser pages of the board. It has no dynamic
// behavior: clean page paths map to html files and everything else is read
// from the static root.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/kaboocam/kaboocam/internal/config"
)

//go:embed all:public
var embedded embed.FS

const shutdownTimeout = 5 * time.Second

// Pages maps each clean path to the file it serves, relative to the root.
var Pages = map[string]string{
	"/":             "pages/home/index.html",
	"/login":        "pages/auth/login/login.html",
	"/signup":       "pages/auth/signup/signup.html",
	"/recover":      "pages/auth/recover/recover.html",
	"/board":        "pages/board/board.html",
	"/board/detail": "pages/board/postDetail.html",
	"/mypage":       "pages/mypage/mypage.html",
}

type Server struct {
	cfg     config.ServerConfig
	logger  *zap.Logger
	root    fs.FS
	handler http.Handler
}

// New builds the page server. The root is cfg.StaticDir when set, otherwise
// the pages compiled into the binary.
func New(cfg config.ServerConfig, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	root, err := staticRoot(cfg.StaticDir)
	if err != nil {
		return nil, err
	}
	s := &Server{cfg: cfg, logger: logger, root: root}
	s.handler = s.routes()
	return s, nil
}

func staticRoot(dir string) (fs.FS, error) {
	if dir == "" {
		return fs.Sub(embedded, "public")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("static dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("static dir %s is not a directory", dir)
	}
	return os.DirFS(dir), nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	for path, file := range Pages {
		pattern := "GET " + path
		if path == "/" {
			pattern = "GET /{$}"
		}
		mux.HandleFunc(pattern, s.page(file))
	}
	mux.Handle("GET /", http.FileServerFS(s.root))

	var h http.Handler = mux
	if len(s.cfg.AllowedOrigins) > 0 {
		h = cors.New(cors.Options{
			AllowedOrigins:   s.cfg.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodHead, http.MethodOptions},
			AllowCredentials: true,
		}).Handler(h)
	}
	return s.logRequests(h)
}

func (s *Server) page(file string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := fs.Stat(s.root, file); err != nil {
			s.logger.Warn("page missing", zap.String("file", file), zap.Error(err))
			http.NotFound(w, r)
			return
		}
		http.ServeFileFS(w, r, s.root, file)
	}
}

// Handler returns the full handler chain, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured port until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving pages", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	<-errCh
	s.logger.Info("server stopped")
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
