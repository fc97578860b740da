// Package server provides the HTTP REST API for the apply agent.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sarperhorata/remote-jobs-api-sub003/internal/bulk"
	"github.com/sarperhorata/remote-jobs-api-sub003/internal/config"
	"github.com/sarperhorata/remote-jobs-api-sub003/internal/llm"
	"github.com/sarperhorata/remote-jobs-api-sub003/internal/pipeline"
	"github.com/sarperhorata/remote-jobs-api-sub003/internal/ratelimit"
	"github.com/sarperhorata/remote-jobs-api-sub003/internal/responses"
	"github.com/sarperhorata/remote-jobs-api-sub003/internal/server/middleware"
	"github.com/sarperhorata/remote-jobs-api-sub003/internal/store"
)

// taskRetention is how long terminal bulk tasks stay queryable.
const taskRetention = 24 * time.Hour

// Server is the HTTP server and its collaborators.
type Server struct {
	httpServer   *http.Server
	store        store.Store
	postgres     *store.Postgres
	llmClient    llm.Client
	generator    *responses.Generator
	applier      bulk.Applier
	registry     *bulk.Registry
	orchestrator *bulk.Orchestrator
	rateLimiter  *ratelimit.Limiter
	jwtService   *JWTService
	validator    *validator.Validate
	sweepStop    chan struct{}
}

// Config holds server configuration.
type Config struct {
	Port        int
	DatabaseURL string
	APIKey      string
}

// New creates a server and wires its collaborators. A missing database URL
// falls back to the in-memory application store; a missing API key disables
// LLM generation and falls back to template responses.
func New(cfg Config) (*Server, error) {
	s := &Server{
		validator: validator.New(),
		registry:  bulk.NewRegistry(),
		sweepStop: make(chan struct{}),
	}

	if cfg.DatabaseURL != "" {
		pg, err := store.Connect(context.Background(), cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		s.postgres = pg
		s.store = pg
	} else {
		log.Println("No database configured, recording applications in memory")
		s.store = store.NewMemory()
	}

	if cfg.APIKey != "" {
		client, err := llm.NewClient(context.Background(), llm.DefaultConfig(), cfg.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		s.llmClient = client
	} else {
		log.Println("No API key configured, using template responses")
	}

	s.generator = responses.NewGenerator(s.llmClient)
	s.applier = pipeline.NewApplier(s.generator, s.store, nil)
	s.orchestrator = bulk.NewOrchestrator(s.registry, s.applier)
	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}
	s.jwtService = NewJWTService(jwtConfig)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // SSE streams stay open for long tasks
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// routes builds the router. Everything except /health requires a valid
// bearer token.
func (s *Server) routes() http.Handler {
	authed := http.NewServeMux()
	authed.HandleFunc("POST /forms/analyze", s.handleAnalyzeForm)
	authed.HandleFunc("POST /forms/fill", s.handleFillForm)
	authed.HandleFunc("POST /forms/submit", s.handleSubmitForm)

	authed.HandleFunc("POST /bulk-apply", s.handleStartBulkApply)
	authed.HandleFunc("GET /bulk-apply/history", s.handleBulkApplyHistory)
	authed.HandleFunc("GET /bulk-apply/{task_id}/status", s.handleBulkApplyStatus)
	authed.HandleFunc("GET /bulk-apply/{task_id}/results", s.handleBulkApplyResults)
	authed.HandleFunc("POST /bulk-apply/{task_id}/cancel", s.handleCancelBulkApply)
	authed.HandleFunc("GET /bulk-apply/{task_id}/stream", s.handleBulkApplyStream)

	requireAuth := middleware.Auth(s.jwtService.AsTokenValidator())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("/", requireAuth(authed))

	return s.withLogging(s.withCORS(mux))
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go s.sweepTasks()

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	close(s.sweepStop)
	s.rateLimiter.Stop()
	if s.llmClient != nil {
		s.llmClient.Close() //nolint:errcheck
	}
	if s.postgres != nil {
		s.postgres.Close()
	}
	log.Println("Server stopped")
	return nil
}

// sweepTasks periodically drops old terminal bulk tasks.
func (s *Server) sweepTasks() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-s.sweepStop:
			return
		case <-ticker.C:
			if removed := s.registry.Sweep(taskRetention); removed > 0 {
				log.Printf("[bulk] swept %d expired tasks", removed)
			}
		}
	}
}

// withCORS adds CORS headers.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
