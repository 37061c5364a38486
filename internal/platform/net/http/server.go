package http

import (
	"context"
	"crypto/tls"
	stdhttp "net/http"
	"time"

	"cardduel/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// Server is a thin wrapper over chi + stdlib http.Server
type Server struct {
	addr string
	mux  *chi.Mux
	srv  *stdhttp.Server

	certFile string
	keyFile  string
}

// Option mutates a Server during NewServer
type Option func(*Server)

// WithTLSFiles serves TLS from the given cert/key pair
func WithTLSFiles(certFile, keyFile string) Option {
	return func(s *Server) {
		s.certFile = certFile
		s.keyFile = keyFile
	}
}

// WithTLSConfig installs a prebuilt tls.Config (mTLS between services)
func WithTLSConfig(cfg *tls.Config) Option {
	return func(s *Server) { s.srv.TLSConfig = cfg }
}

// NewServer creates an http server listening on addr
func NewServer(addr string, opts ...Option) *Server {
	m := chi.NewRouter()
	s := &Server{
		addr: addr,
		mux:  m,
		srv: &stdhttp.Server{
			Addr:              addr,
			Handler:           m,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Router returns a Router facade over the internal chi mux
func (s *Server) Router() Router {
	return AdaptChi(s.mux)
}

// Addr returns the listening address
func (s *Server) Addr() string { return s.addr }

// Run starts the server and blocks
func (s *Server) Run(ctx context.Context) error {
	log := logger.Named("http")
	var err error
	if s.certFile != "" || s.srv.TLSConfig != nil {
		log.Info().Str("addr", s.addr).Bool("tls", true).Msg("http listening")
		err = s.srv.ListenAndServeTLS(s.certFile, s.keyFile)
	} else {
		log.Info().Str("addr", s.addr).Msg("http listening")
		err = s.srv.ListenAndServe()
	}
	if err == stdhttp.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
