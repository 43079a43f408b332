// Package main is the entry point for the quote studio server.
//
// MAIN PACKAGE IN GO:
// Every Go program starts execution in the main() function of the "main" package.
// The main package should be kept minimal — its job is to:
// 1. Read configuration (from env vars, flags, or config files)
// 2. Create dependencies (logger, store paths, etc.)
// 3. Start the application
//
// All actual logic lives in imported packages (internal/server, internal/state, etc.).
// This separation makes the app testable and its components reusable.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sakif/quote-studio/internal/server"
)

// devJWTSecret signs admin session cookies when JWT_SECRET is unset. The
// admin gate is a convenience lock for a shared demo deployment, not a
// security boundary, so a baked-in dev secret is acceptable here.
const devJWTSecret = "quote-studio-dev-secret"

func main() {
	// === 1. SET UP LOGGING ===
	// slog.New creates a structured logger. slog.NewTextHandler outputs human-readable logs.
	// Log levels (from least to most severe): Debug → Info → Warn → Error
	// In production, you'd use LevelInfo or LevelWarn to reduce noise.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	// === 2. READ CONFIGURATION ===
	// Env vars with defaults; os.Getenv returns "" when unset.
	// In a larger app, you'd use a config library (like viper) or a config
	// struct loaded from a YAML/TOML file. Env vars are simple and standard.
	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	// === 3. DATABASE PATH ===
	// Default to "data/quotestudio.db" in the project root.
	// DB_PATH env var allows overriding for production deployments.
	// Example: DB_PATH=/var/lib/quotestudio/prod.db
	dbPath := "data/quotestudio.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}

	// Ensure the data directory exists.
	// os.MkdirAll creates all parent directories if needed (like `mkdir -p`).
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", dbDir),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// === 4. GENERATIVE BACKEND ===
	// GEMINI_API_KEY is optional — the server starts without it, but the
	// /api/generate endpoints answer 502 and the studio stays off.
	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		logger.Warn("GEMINI_API_KEY not set — generation endpoints will be unavailable")
	}

	// === 5. ADMIN CONFIGURATION ===
	// ADMIN_PASSPHRASE_HASH is a bcrypt hash of the dashboard passphrase;
	// unset falls back to the built-in demo passphrase.
	// JWT_SECRET should be a long random string:
	//   JWT_SECRET=$(openssl rand -hex 32)
	adminHash := os.Getenv("ADMIN_PASSPHRASE_HASH")
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Warn("JWT_SECRET not set — using the built-in dev secret")
		jwtSecret = devJWTSecret
	}

	// === 6. AUTONOMOUS STUDIO ===
	// STUDIO_ENABLED=true runs the background generation loop, publishing
	// a fresh AI-authored quote into the gallery on a fixed interval.
	studioEnabled := os.Getenv("STUDIO_ENABLED") == "true"
	studioInterval := time.Duration(0) // 0 = server default
	if intervalStr := os.Getenv("STUDIO_INTERVAL"); intervalStr != "" {
		var err error
		studioInterval, err = time.ParseDuration(intervalStr)
		if err != nil {
			logger.Error("invalid STUDIO_INTERVAL value", slog.String("value", intervalStr))
			os.Exit(1)
		}
	}

	// === 7. CREATE AND START THE SERVER ===
	cfg := server.Config{
		Port:                port,
		DBPath:              dbPath,
		GeminiAPIKey:        geminiKey,
		AdminPassphraseHash: adminHash,
		JWTSecret:           jwtSecret,
		StudioEnabled:       studioEnabled,
		StudioInterval:      studioInterval,
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
