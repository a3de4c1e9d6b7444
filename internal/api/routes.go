// Route registration and go-chi router setup.
// Public routes (/health, /auth/token) vs JWT-protected routes (/api/v1/*).
package api

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/martinserrat/triagent/internal/api/handlers"
	apmiddleware "github.com/martinserrat/triagent/internal/api/middleware"
	"github.com/martinserrat/triagent/internal/domain/assessment"
	domainaudit "github.com/martinserrat/triagent/internal/domain/audit"
	"github.com/martinserrat/triagent/internal/domain/chat"
	"github.com/martinserrat/triagent/internal/domain/guideline"
	"github.com/martinserrat/triagent/internal/domain/patient"
	tooldomain "github.com/martinserrat/triagent/internal/domain/tool"
	"github.com/martinserrat/triagent/internal/infra/config"
	"github.com/martinserrat/triagent/internal/infra/eventbus"
	"github.com/martinserrat/triagent/internal/infra/llm"
	"github.com/martinserrat/triagent/internal/version"
)

// NewRouter creates and configures a chi router with all routes.
// Returns an error when the configured LLM provider cannot be resolved.
func NewRouter(db *sql.DB, cfg config.Config) (*chi.Mux, error) {
	r := chi.NewRouter()
	auditService := domainaudit.NewService(db)

	// Global middleware (runs on all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// ===== PUBLIC ROUTES (no auth required) =====

	// Health check — unauthenticated, used by load balancers and health probes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	// Service info — name and build version
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"service":"triagent","version":%q}`, version.String())
	})

	// Token endpoint — public, exchanges client credentials for a JWT
	tokenHandler := handlers.NewTokenHandler(cfg.AuthClientID, cfg.AuthClientSecretHash)
	r.Post("/auth/token", tokenHandler.Token)

	// ===== PROTECTED ROUTES (JWT required via AuthMiddleware) =====

	provider, err := buildProvider(cfg)
	if err != nil {
		return nil, err
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apmiddleware.AuthMiddleware)
		r.Use(apmiddleware.AuditMiddleware(auditService))

		// Shared app services for protected APIs
		bus := eventbus.New()
		patientStore := patient.NewStore(db)
		ingestSvc := guideline.NewIngestService(db, bus)
		searchSvc := guideline.NewSearchService(db, provider)
		embedder := guideline.NewEmbedderService(db, provider)
		go embedder.Start(context.Background(), bus)

		// Built-in tools exposed to the assessment loop
		registry := tooldomain.NewRegistry()
		_ = registry.Register(tooldomain.GetPatientDataSpec(), tooldomain.NewGetPatientDataExecutor(patientStore))
		_ = registry.Register(tooldomain.SearchGuidelinesSpec(), tooldomain.NewSearchGuidelinesExecutor(searchSvc))

		driver := assessment.NewDriver(provider, registry, cfg.MaxToolRounds, cfg.Temperature)
		assessSvc := assessment.NewService(patientStore, driver, cfg.FallbackAssessment)
		chatSvc := chat.NewService(searchSvc, provider, chat.NewStore())

		assessHandler := handlers.NewAssessHandler(assessSvc)
		chatHandler := handlers.NewChatHandler(chatSvc)
		patientHandler := handlers.NewPatientHandler(patientStore)
		guidelineHandler := handlers.NewGuidelineHandler(ingestSvc, searchSvc)
		auditHandler := handlers.NewAuditHandler(auditService)

		r.Post("/assess", assessHandler.Assess) // POST /api/v1/assess

		r.Route("/chat", func(r chi.Router) {
			r.Post("/", chatHandler.Chat)                       // POST /api/v1/chat
			r.Get("/{session_id}/history", chatHandler.History) // GET /api/v1/chat/{session_id}/history
			r.Delete("/{session_id}", chatHandler.Clear)        // DELETE /api/v1/chat/{session_id}
		})

		r.Route("/patients", func(r chi.Router) {
			r.Get("/", patientHandler.List)    // GET /api/v1/patients
			r.Get("/{id}", patientHandler.Get) // GET /api/v1/patients/{id}
		})

		r.Route("/guidelines", func(r chi.Router) {
			r.Get("/", guidelineHandler.Sources)       // GET /api/v1/guidelines
			r.Post("/ingest", guidelineHandler.Ingest) // POST /api/v1/guidelines/ingest
			r.Post("/search", guidelineHandler.Search) // POST /api/v1/guidelines/search
		})

		r.Get("/audit", auditHandler.List) // GET /api/v1/audit
	})

	return r, nil
}

// buildProvider constructs the adapters named in config and resolves the
// configured default through the router.
func buildProvider(cfg config.Config) (llm.LLMProvider, error) {
	providers := map[string]llm.LLMProvider{
		"ollama": llm.NewOllamaProvider(cfg.OllamaBaseURL, cfg.OllamaChatModel, cfg.OllamaEmbedModel),
	}
	if cfg.OpenAIAPIKey != "" {
		providers["openai"] = llm.NewOpenAIProvider(cfg.OpenAIAPIKey, "", cfg.OpenAIChatModel, cfg.OpenAIEmbedModel)
	}

	router := llm.NewRouter(providers, cfg.LLMProvider)
	return router.Route(context.Background())
}
