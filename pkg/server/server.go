package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/beechford-estate/smart-plans/pkg/export"
	"github.com/beechford-estate/smart-plans/pkg/handlers/calculator"
	"github.com/beechford-estate/smart-plans/pkg/handlers/plans"
	smartplansmiddleware "github.com/beechford-estate/smart-plans/pkg/server/middleware"
)

var allowedOrigins = []string{
	"http://localhost:3000",
	"https://circle-property-website.vercel.app",
}

type WebAPI struct {
	router *chi.Mux
	logger *zerolog.Logger
	server *http.Server

	shutdownTimeout time.Duration
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration

	// SolverTimeBudget caps each optimization solve.
	SolverTimeBudget time.Duration

	// FilesDir is served at /files for artifact downloads.
	FilesDir string

	Logger zerolog.Logger
}

func ConfigureRouter(config Config) *chi.Mux {
	var exporter *export.Exporter
	if config.FilesDir != "" {
		exporter = &export.Exporter{BaseDir: config.FilesDir}
	}
	plansHandler := plans.NewHandler(config.SolverTimeBudget, exporter)
	calcHandler := calculator.NewHandler()

	router := chi.NewRouter()

	router.Use(smartplansmiddleware.Logger(&config.Logger))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	router.Get("/", info)
	router.Get("/health", health)

	router.Post("/deal-picker/optimize", plansHandler.DealPicker)
	router.Post("/debt-stack/optimize", plansHandler.DebtStack)
	router.Post("/leasing-mix/optimize", plansHandler.LeasingMix)
	router.Post("/capex-phasing/optimize", plansHandler.CapexPhasing)

	router.Post("/calculate", calcHandler.Calculate)
	router.Post("/equilibrium/principal", calcHandler.EquilibriumPrincipal)
	router.Post("/equilibrium/f", calcHandler.EquilibriumF)
	router.Post("/equilibrium/f_bisect", calcHandler.EquilibriumFBisect)
	router.Post("/export/xlsx", calcHandler.ExportXLSX)

	if config.FilesDir != "" {
		files := http.StripPrefix("/files/", http.FileServer(http.Dir(config.FilesDir)))
		router.Get("/files/*", files.ServeHTTP)
	}

	return router
}

func NewWebAPI(config Config) *WebAPI {
	router := ConfigureRouter(config)

	return &WebAPI{
		router: router,
		logger: &config.Logger,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: router,
		},
		shutdownTimeout: config.ShutdownTimeout,
	}
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		timeout := w.shutdownTimeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{
		"status":  "ok",
		"service": "beechford-smart-plans-api",
		"version": "1.0.0",
	})
}

func info(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{
		"message": "Beechford Estate Office - Smart Plans API",
		"tagline": "Institutional-grade modeling with full transparency",
		"modules": []string{"deal-picker", "debt-stack", "capex-phasing", "leasing-mix"},
		"health":  "/health",
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
