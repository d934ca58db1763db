package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/homehealth/intake/internal/config"
	"github.com/homehealth/intake/internal/domain/referral"
	"github.com/homehealth/intake/internal/domain/workflow"
	"github.com/homehealth/intake/internal/platform/integration"
	"github.com/homehealth/intake/internal/platform/metrics"
	"github.com/homehealth/intake/internal/platform/middleware"
)

// integrationNames are the capability providers the workflow catalog
// dispatches to. Local runs back each one with a simulated handler.
var integrationNames = []string{
	"sterling",
	"supabase",
	"axxess",
	"scheduling",
	"sendgrid",
	"ai-qa",
	"approval",
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "intake-server",
		Short: "Home-health intake API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(decideCmd())
	rootCmd.AddCommand(workflowsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the intake API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func decideCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "decide",
		Short: "Score a referral from a JSON file and print the decision",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read referral file: %w", err)
			}
			var ref referral.ReferralData
			if err := json.Unmarshal(data, &ref); err != nil {
				return fmt.Errorf("parse referral file: %w", err)
			}
			engine := referral.NewEngine(zerolog.Nop())
			decision := engine.Decide(ref, nil)
			fmt.Println(referral.Describe(decision))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to a referral JSON file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func workflowsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "workflows",
		Short: "Print the workflow catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := workflow.NewRegistry(workflow.Catalog())
			if err != nil {
				return err
			}
			for _, def := range registry.List() {
				fmt.Printf("%s\t%s\t(%d steps, trigger %s, compliance %s)\n",
					def.ID, def.Name, len(def.Steps), def.Trigger.Type, def.ComplianceLevel)
			}
			return nil
		},
	}
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Metrics
	metrics.Init()

	// Integration dispatcher: simulated handlers for every capability the
	// catalog names.
	integrations := integration.NewRegistry()
	for _, name := range integrationNames {
		integrations.Register(name, integration.Simulated(name, logger))
	}

	// Engines
	decisionEngine := referral.NewEngineWithOptions(logger, referral.EngineOptions{
		AcceptThreshold: cfg.AcceptThreshold,
		ReviewThreshold: cfg.ReviewThreshold,
	})
	workflowRegistry, err := workflow.NewRegistry(workflow.Catalog())
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid workflow catalog")
	}
	workflowEngine := workflow.NewEngine(workflowRegistry, integrations, cfg.SigningKey, logger)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// API group
	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	referral.NewHandler(decisionEngine).RegisterRoutes(apiV1)
	workflow.NewHandler(workflowEngine).RegisterRoutes(apiV1)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})

	// Prometheus metrics
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
