// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer — it connects the state containers,
// handlers, and middleware. Think of it as the control centre that decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// WHY SEPARATE FROM main.go?
// Keeping server setup in its own package makes it:
// - Testable (we can create a test server without running main)
// - Reusable (multiple entry points could use the same server config)
// - Clean (main.go stays minimal — just "start the server")
//
// DEPENDENCY INJECTION FLOW:
// main.go creates the Config → Server.New() creates:
//   sqlite.Store → AuthState + QuotesState → handlers
// plus the admin gate, token service, stats service, and (optionally)
// the Gemini client and the autonomous studio.
//
// This is the "composition root" pattern — all dependencies are wired
// in one place (New/setupRoutes), rather than scattered across the codebase.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/quote-studio/internal/auth"
	"github.com/sakif/quote-studio/internal/genai"
	"github.com/sakif/quote-studio/internal/handler"
	"github.com/sakif/quote-studio/internal/middleware"
	"github.com/sakif/quote-studio/internal/state"
	"github.com/sakif/quote-studio/internal/stats"
	sqliteStore "github.com/sakif/quote-studio/internal/storage/sqlite"
)

// Config holds server configuration.
// Using a struct for config (instead of individual parameters) makes it easy to:
// - Add new config options without changing function signatures
// - Pass config around as a single value
// - Load config from files/env vars in one place
type Config struct {
	Port                int
	DBPath              string // path to the SQLite database file
	GeminiAPIKey        string // empty disables the generation endpoints
	AdminPassphraseHash string // bcrypt hash; empty falls back to the built-in passphrase
	JWTSecret           string // signs the admin session cookie
	StudioEnabled       bool   // run the autonomous generation loop
	StudioInterval      time.Duration
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the SQLite store. When the server shuts down we must
// close it to flush pending writes and release the file lock; that is
// handled in Start() during graceful shutdown. The studio goroutine (when
// enabled) is tied to a context that Start() cancels before returning.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	store  *sqliteStore.Store
	studio *genai.Studio // nil unless enabled and a generator exists
}

// studioSink adapts QuotesState to the studio's publish interface: each
// finished quote lands in the gallery exactly like a user upload, authored
// by the resident AI account.
type studioSink struct {
	quotes   *state.QuotesState
	authorID string
}

func (s *studioSink) PublishQuote(ctx context.Context, quoteText, imageURL, category string) {
	s.quotes.AddQuote(ctx, state.QuoteInput{
		QuoteText: quoteText,
		ImageURL:  imageURL,
		Category:  category,
		AuthorID:  s.authorID,
	})
}

// New creates a new Server with the given config.
//
// DEPENDENCY INJECTION & WIRING:
// This is where the entire dependency chain is assembled:
//  1. Open the SQLite key-value store (sqlite.New)
//  2. Hydrate the state containers (state.NewAuthState / NewQuotesState)
//  3. Create the handlers with the containers
//  4. Wire handlers to routes
//
// Each layer only receives what it needs:
// - Containers get the storage.Store interface (not the concrete *sqlite.Store)
// - Handlers get the containers (not the store)
// - The stats service reads through the containers' accessor interfaces
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	store, err := sqliteStore.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
	}

	if err := s.setupRoutes(); err != nil {
		store.Close() // Clean up the store if route setup fails
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// POST   /api/session                → Log in with a display name
// GET    /api/session                → Current user (204 when logged out)
// GET    /api/users/{id}             → Profile (placeholder for gone accounts)
// PATCH  /api/users/{id}             → Update name/bio
// DELETE /api/users/{id}             → Delete account + cascade its quotes
// GET    /api/quotes                 → Gallery (category / q / sort filters)
// POST   /api/quotes                 → Publish a quote
// GET    /api/quotes/{id}            → Single quote
// DELETE /api/quotes/{id}            → Delete own quote
// POST   /api/quotes/{id}/like       → Toggle like
// GET    /api/quotes/{id}/comments   → Comment thread
// POST   /api/quotes/{id}/comments   → Add a comment
// GET    /api/toasts                 → Live notifications
// DELETE /api/toasts/{id}            → Dismiss a notification
// POST   /api/generate/text          → Generate a quote
// POST   /api/generate/image         → Generate artwork
// POST   /api/generate/audio         → Narrate a quote
// POST   /api/admin/login            → Admin passphrase login
// POST   /api/admin/logout           → Admin logout
// GET    /api/admin/stats            → Dashboard (behind RequireAdmin)
//
// MIDDLEWARE ORDER MATTERS:
// Middleware executes in the order it's added. Our order:
// 1. RequestID — assigns unique ID to each request (for tracing)
// 2. RealIP — extracts real client IP from proxy headers
// 3. Recoverer — catches panics and returns 500 instead of crashing
// 4. Logger — logs each request with timing info
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// === State containers ===
	// Both hydrate from the store at startup and fall back to seeded
	// defaults (or empty collections) on missing or malformed snapshots.
	authState := state.NewAuthState(s.store, s.logger)
	quotesState := state.NewQuotesState(s.store, s.logger)

	// === Admin plumbing ===
	gate, err := auth.NewGate(s.config.AdminPassphraseHash)
	if err != nil {
		return fmt.Errorf("creating admin gate: %w", err)
	}
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	statsService := stats.NewService(authState, quotesState)

	// === Generative backend (optional) ===
	// Without an API key the generation endpoints answer 502 and the
	// studio stays off; the gallery itself works fully without it.
	var generator genai.Generator
	if s.config.GeminiAPIKey != "" {
		client, err := genai.NewGeminiClient(s.config.GeminiAPIKey, s.logger)
		if err != nil {
			return fmt.Errorf("creating gemini client: %w", err)
		}
		generator = client
	}

	if s.config.StudioEnabled && generator != nil {
		sink := &studioSink{quotes: quotesState, authorID: state.SeedAIUserID}
		s.studio = genai.NewStudio(generator, sink, state.SeedAIUserID,
			"Motivation", "", s.config.StudioInterval, s.logger)
	}

	// === Handlers ===
	sessionHandler := handler.NewSessionHandler(authState, quotesState, s.logger)
	quoteHandler := handler.NewQuoteHandler(quotesState, authState, s.logger)
	generateHandler := handler.NewGenerateHandler(generator, s.logger)
	adminHandler := handler.NewAdminHandler(gate, tokens, statsService, s.store, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/session", sessionHandler.HandleLogin)
		r.Get("/session", sessionHandler.HandleCurrentUser)
		r.Get("/users/{id}", sessionHandler.HandleGetUser)
		r.Patch("/users/{id}", sessionHandler.HandleUpdateUser)
		r.Delete("/users/{id}", sessionHandler.HandleDeleteUser)

		r.Get("/quotes", quoteHandler.HandleList)
		r.Post("/quotes", quoteHandler.HandleCreate)
		r.Get("/quotes/{id}", quoteHandler.HandleGet)
		r.Delete("/quotes/{id}", quoteHandler.HandleDelete)
		r.Post("/quotes/{id}/like", quoteHandler.HandleToggleLike)
		r.Get("/quotes/{id}/comments", quoteHandler.HandleListComments)
		r.Post("/quotes/{id}/comments", quoteHandler.HandleAddComment)

		r.Get("/toasts", quoteHandler.HandleListToasts)
		r.Delete("/toasts/{id}", quoteHandler.HandleRemoveToast)

		r.Post("/generate/text", generateHandler.HandleText)
		r.Post("/generate/image", generateHandler.HandleImage)
		r.Post("/generate/audio", generateHandler.HandleAudio)

		r.Post("/admin/login", adminHandler.HandleLogin)
		r.Post("/admin/logout", adminHandler.HandleLogout)
		r.With(auth.RequireAdmin(tokens)).Get("/admin/stats", adminHandler.HandleStats)
	})

	return nil
}

// Router exposes the configured router, mainly for tests that want to
// drive the full route table without binding a port.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Cancel the studio context (no more generation work is issued)
// 2. Stop accepting new HTTP connections
// 3. Wait for in-flight requests to finish (30s timeout)
// 4. Close the store (flushes WAL, releases the file lock)
//
// If we skip step 4, the database file might be left in an inconsistent
// state. The `defer s.store.Close()` ensures it happens even on panic.
func (s *Server) Start() error {
	defer s.store.Close()

	// The studio (when configured) lives exactly as long as the server.
	studioCtx, stopStudio := context.WithCancel(context.Background())
	defer stopStudio()
	if s.studio != nil {
		go s.studio.Run(studioCtx)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // generation calls are slow
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
			slog.Bool("studio", s.studio != nil),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		stopStudio()

		// Give in-flight requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
