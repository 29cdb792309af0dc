package main

import (
	"log"
	"log/slog"

	"github.com/joho/godotenv"

	"github.com/vbonduro/recipestudio/internal/config"
	"github.com/vbonduro/recipestudio/internal/logging"
	"github.com/vbonduro/recipestudio/internal/recipegen"
	anthropicgen "github.com/vbonduro/recipestudio/internal/recipegen/anthropic"
	geminigen "github.com/vbonduro/recipestudio/internal/recipegen/gemini"
	"github.com/vbonduro/recipestudio/internal/service"
	"github.com/vbonduro/recipestudio/internal/session"
	"github.com/vbonduro/recipestudio/internal/store"
	"github.com/vbonduro/recipestudio/internal/web"
	"github.com/vbonduro/recipestudio/internal/web/templates"
)

func main() {
	// Missing .env is fine; the environment may carry everything.
	_ = godotenv.Load()

	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	generator := newGenerator(cfg, logger)
	if generator == nil {
		return
	}

	recipes := store.NewRecipeStore()
	sess := session.New()
	svc := service.NewRecipeService(generator, recipes, logger)
	server := web.NewServer(svc, sess, templates.FS, cfg.GeminiAPIKey, logger)

	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}

func newGenerator(cfg *config.Config, logger *slog.Logger) recipegen.Generator {
	switch cfg.GeneratorBackend {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			logger.Error("ANTHROPIC_API_KEY is required when GENERATOR_BACKEND=anthropic")
			return nil
		}
		logger.Info("using Anthropic generator backend", "model", cfg.AnthropicModel)
		return anthropicgen.New(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	default:
		if cfg.GeminiAPIKey == "" {
			logger.Error("GEMINI_API_KEY is required when GENERATOR_BACKEND=gemini")
			return nil
		}
		logger.Info("using Gemini generator backend", "model", cfg.GeminiModel)
		return geminigen.New(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiPantryModel)
	}
}
