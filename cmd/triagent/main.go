// triagent — clinical decision-support service for NICE NG12 triage.
// Entry point: flag handling, configuration, storage setup, HTTP serving.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/martinserrat/triagent/internal/domain/patient"
	"github.com/martinserrat/triagent/internal/infra/config"
	"github.com/martinserrat/triagent/internal/infra/sqlite"
	"github.com/martinserrat/triagent/internal/server"
	"github.com/martinserrat/triagent/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("triagent", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	showVersion := fs.Bool("version", false, "Show version information")
	showHelp := fs.Bool("help", false, "Show help")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintln(out, version.String()) //nolint:errcheck
		return 0
	}

	if *showHelp {
		printHelp(out)
		return 0
	}

	if err := serve(); err != nil {
		log.Printf("fatal: %v", err)
		return 1
	}
	return 0
}

func serve() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := sqlite.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	if err := sqlite.MigrateUp(db); err != nil {
		return err
	}

	if cfg.PatientSeedPath != "" {
		store := patient.NewStore(db)
		n, err := store.SeedFromFile(context.Background(), cfg.PatientSeedPath)
		if err != nil {
			return fmt.Errorf("seed patients: %w", err)
		}
		log.Printf("seeded %d patients from %s", n, cfg.PatientSeedPath)
	}

	srvCfg := server.DefaultConfig()
	srvCfg.Host = cfg.Host
	srvCfg.Port = cfg.Port

	srv, err := server.NewServer(db, srvCfg, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func printHelp(out io.Writer) {
	helpText := `triagent - clinical decision-support service

Usage:
  triagent [options]

Options:
  --version    Show version information
  --help       Show this help message

Running with no options starts the HTTP server. Configuration is read from
built-in defaults, then the YAML file named by CONFIG_FILE, then environment
variables (HOST, PORT, DB_PATH, LLM_PROVIDER, OLLAMA_BASE_URL, ...).

Examples:
  triagent --version
  PORT=9090 triagent
  CONFIG_FILE=triagent.yaml triagent`
	fmt.Fprintln(out, helpText) //nolint:errcheck
}
