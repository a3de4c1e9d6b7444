// HTTP server initialization and lifecycle management.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/martinserrat/triagent/internal/api"
	"github.com/martinserrat/triagent/internal/infra/config"
)

// Config holds HTTP server configuration.
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns default HTTP server configuration.
// The write timeout is generous: a tool-calling assessment can take several
// model round-trips on a local Ollama instance.
func DefaultConfig() Config {
	return Config{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Server wraps the HTTP server and database.
type Server struct {
	config Config
	db     *sql.DB
	http   *http.Server
}

// NewServer creates a new HTTP server with the given database and configuration.
func NewServer(db *sql.DB, config Config, appCfg config.Config) (*Server, error) {
	router, err := api.NewRouter(db, appCfg)
	if err != nil {
		return nil, err
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return &Server{
		config: config,
		db:     db,
		http:   httpServer,
	}, nil
}

// Start starts the HTTP server and blocks until the listener fails or the
// server is shut down.
func (s *Server) Start(_ context.Context) error {
	log.Printf("starting HTTP server on %s", s.http.Addr)
	return s.http.ListenAndServe()
}

// Shutdown gracefully shuts down the server and closes the database connection.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("shutting down server...")

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("database close error: %w", err)
	}

	log.Println("server shutdown complete")
	return nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.http.Addr
}
