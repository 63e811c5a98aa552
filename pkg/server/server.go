package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Layr-Labs/merkle-proofs-go/pkg/config"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/hashing"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/util"
)

/*
Server exposes merkle reports over HTTP.

Endpoints:
  POST /trees:
    - Request: { leaves, hashType, leafEncoding }
    - Builds the tree, a proof for every leaf in index order, stores the report
    - Response: the report (201)

  GET /trees:
    - Summaries of stored reports, oldest first

  GET /trees/{root}:
    - The stored report for root, 404 when unknown

  DELETE /trees/{root}:
    - Removes the stored report (idempotent, 204)

  GET /trees/{root}/proofs/{index}:
    - One leaf entry (value, digest, proof), 404 when the report or index is unknown

  POST /verify:
    - Request: { leaf, leafEncoding, proof, root, hashType }
    - Stateless, nothing is looked up in the store
    - Valid proof: 200 { valid: true, computedRoot }
    - Failed verification: 200 { valid: false, computedRoot, error }
    - Malformed proof or root: 400 { valid: false, error }

  GET /health:
    - Store health check, 503 when the store is unavailable

Every request passes through a token bucket limiter; requests above the configured
rate get 429.
*/

const (
	maxRequestBodyBytes = 32 << 20
	readHeaderTimeout   = 10 * time.Second
)

// Server handles HTTP requests for the proof service
type Server struct {
	store           persistence.IReportPersistence
	logger          *zap.Logger
	limiter         *rate.Limiter
	defaultHashType hashing.HashType
	defaultEncoding util.LeafEncoding
	httpServer      *http.Server
	addr            string
}

// NewServer creates a new server instance. A zero RateLimit disables rate limiting.
func NewServer(cfg *config.ToolConfig, store persistence.IReportPersistence, logger *zap.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if store == nil {
		return nil, fmt.Errorf("report store is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	s := &Server{
		store:           store,
		logger:          logger,
		defaultHashType: cfg.HashType,
		defaultEncoding: cfg.LeafEncoding,
	}
	if s.defaultHashType == "" {
		s.defaultHashType = hashing.DefaultHashType
	}
	if s.defaultEncoding == "" {
		s.defaultEncoding = util.LeafEncodingRaw
	}
	if cfg.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/trees", s.handleTrees)
	mux.HandleFunc("/trees/{root}", s.handleTree)
	mux.HandleFunc("/trees/{root}/proofs/{index}", s.handleProof)
	mux.HandleFunc("/verify", s.handleVerify)
	mux.HandleFunc("/health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.rateLimit(mux),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return s, nil
}

// Start binds the listen address and serves in the background. Bind errors, such as
// the port already being in use, are returned to the caller.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	s.addr = ln.Addr().String()

	go func() {
		s.logger.Sugar().Infow("Starting HTTP server", "addr", s.addr)
		if err := s.httpServer.Serve(ln); err != http.ErrServerClosed {
			s.logger.Sugar().Errorw("HTTP server error", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound listen address once Start has succeeded.
func (s *Server) Addr() string {
	return s.addr
}

// Stop gracefully shuts the HTTP server down
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// GetHandler returns the HTTP handler (for testing)
func (s *Server) GetHandler() http.Handler {
	return s.httpServer.Handler
}

// rateLimit rejects requests once the token bucket is empty
func (s *Server) rateLimit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			s.logger.Sugar().Debugw("Rate limit exceeded", "path", r.URL.Path, "remote", r.RemoteAddr)
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
