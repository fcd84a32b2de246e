package main

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/quotedesk/internal/config"
	"github.com/Simplici0/quotedesk/internal/db"
	"github.com/Simplici0/quotedesk/internal/migrations"
	"github.com/Simplici0/quotedesk/internal/quotes"
	"github.com/Simplici0/quotedesk/internal/render"
	"github.com/Simplici0/quotedesk/internal/seed"
	"github.com/Simplici0/quotedesk/internal/store"
)

const (
	maxBodyBytes       = 1 << 20
	recentQuotations   = 5
	defaultTrendMonths = 6
	maxTrendMonths     = 36
)

type server struct {
	auth     *authService
	store    *store.Store
	quotes   *quotes.Service
	renderer *render.Renderer
	// googleBase overrides the Sheets and Drive hosts when set.
	googleBase string
	now        func() time.Time
}

func newServer(st *store.Store, auth *authService, renderer *render.Renderer) *server {
	return &server{
		auth:     auth,
		store:    st,
		quotes:   quotes.NewService(st),
		renderer: renderer,
		now:      time.Now,
	}
}

func main() {
	cfg := config.Load()

	database, dialect, err := db.Connect(cfg.DatabaseURL, cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if err := migrations.Up(database, dialect); err != nil {
		log.Fatalf("failed to run database migrations: %v", err)
	}

	stats, err := seed.Run(database, seed.Config{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		Dialect:       dialect,
	})
	if err != nil {
		log.Fatalf("failed to seed database: %v", err)
	}
	log.Printf("seed complete: inserts=%d updates=%d", stats.Inserts, stats.Updates)

	company := render.DefaultCompany
	if cfg.CompanyName != "" {
		company.Name = cfg.CompanyName
	}

	st := store.New(database, dialect, store.WithPrefix(cfg.QuotationPrefix))
	srv := newServer(st, newAuthService(st, cfg.SessionSecret, cfg.SessionTTL), render.NewRenderer(company))
	srv.googleBase = cfg.GoogleAPIBase

	addr := ":" + cfg.Port
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("listening on %s (%s)", addr, dialect)
	if err := httpServer.ListenAndServe(); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger)
	r.Use(recoverer)

	r.Get("/health", s.handleHealth)
	r.With(bodyLimit(maxBodyBytes)).Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Use(bodyLimit(maxBodyBytes))

		r.Get("/me", s.handleMe)

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", s.handleClientsList)
			r.Post("/", s.handleClientCreate)
			r.Get("/{id}", s.handleClientGet)
			r.Put("/{id}", s.handleClientUpdate)
			r.Delete("/{id}", s.handleClientDelete)
		})

		r.Route("/items", func(r chi.Router) {
			r.Get("/", s.handleItemsList)
			r.Post("/", s.handleItemCreate)
			r.Get("/{id}", s.handleItemGet)
			r.Put("/{id}", s.handleItemUpdate)
			r.Delete("/{id}", s.handleItemDelete)
		})

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", s.handleTemplatesList)
			r.Post("/", s.handleTemplateCreate)
			r.Get("/{id}", s.handleTemplateGet)
			r.Put("/{id}", s.handleTemplateUpdate)
			r.Delete("/{id}", s.handleTemplateDelete)
			r.Post("/{id}/quotations", s.handleQuotationFromTemplate)
		})

		r.Route("/quotations", func(r chi.Router) {
			r.Get("/", s.handleQuotationsList)
			r.Post("/", s.handleQuotationCreate)
			r.Get("/{id}", s.handleQuotationGet)
			r.Put("/{id}", s.handleQuotationUpdate)
			r.Patch("/{id}/status", s.handleQuotationStatus)
			r.Delete("/{id}", s.handleQuotationDelete)
			r.Get("/{id}/pdf", s.handleQuotationPDF)
			r.Get("/{id}/versions", s.handleVersionsList)
			r.Get("/{id}/versions/compare", s.handleVersionsCompare)
			r.Post("/{id}/versions/{versionID}/restore", s.handleVersionRestore)
		})

		r.Get("/analytics/profit", s.handleProfit)
		r.Get("/dashboard", s.handleDashboard)

		r.Route("/goals", func(r chi.Router) {
			r.Get("/", s.handleGoalsList)
			r.Post("/", s.handleGoalCreate)
			r.Get("/progress", s.handleGoalsProgress)
			r.Get("/{id}", s.handleGoalGet)
			r.Put("/{id}", s.handleGoalUpdate)
			r.Delete("/{id}", s.handleGoalDelete)
			r.Get("/{id}/progress", s.handleGoalProgress)
		})

		r.Route("/exports", func(r chi.Router) {
			r.Get("/quotations.xlsx", s.handleExportXLSX)
			r.Post("/sheets", s.handleExportSheets)
			r.Post("/drive", s.handleExportDrive)
		})
	})

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DB().PingContext(r.Context()); err != nil {
		fail(w, r, "health check", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
