package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"makerkit_backend/core"
	"makerkit_backend/core/validation"
	"makerkit_backend/db"
	"makerkit_backend/evaluation"
	"makerkit_backend/handlers"
	"makerkit_backend/imagegen"
	"makerkit_backend/llm"
	"makerkit_backend/logging"
	"makerkit_backend/shutdown"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env file if it exists. Absence is fine: every backend
	// credential is optional and defaults run fully offline.
	if err := godotenv.Load(); err != nil {
		fmt.Printf("No .env file loaded: %v\n", err)
	}

	// Determine if running in development mode
	isDevelopment := os.Getenv("DEV_MODE") == "true"

	// Initialize structured logger early
	logger, err := logging.NewLogger(isDevelopment, "app.log")
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(core.ExitCodeError)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Printf("Failed to sync logger: %v\n", syncErr)
		}
	}()

	logger.Info("Starting MakerKit backend", zap.String("version", core.GetVersionInfo()))

	// Run startup validation before heavy operations
	exitCode := runStartupValidation(logger)
	if exitCode != core.ExitCodeSuccess {
		os.Exit(exitCode)
	}

	// Load configuration (safe to call after validation passes)
	config, err := core.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.Int("port", config.Port),
		zap.Bool("image_backend", config.HasImageBackend()),
		zap.Bool("text_backend", config.HasTextBackend()),
		zap.Int("candidate_count", config.CandidateCount),
		zap.Bool("diversify_candidates", config.DiversifyCandidates),
		zap.Int("max_attempts_per_model", config.MaxAttemptsPerModel),
		zap.Duration("invoke_timeout", config.InvokeTimeout),
		zap.Duration("cascade_deadline", config.CascadeDeadline),
		zap.String("db_path", config.DBPath),
		zap.Bool("allow_self_signed_certs", config.AllowSelfSignedCerts),
		zap.Bool("dev_mode", isDevelopment),
	)

	// Open the database and apply migrations
	database, err := db.NewDatabaseWithConfig(db.DatabaseConfig{
		Path:           config.DBPath,
		MigrationsPath: migrationsURL(config.MigrationsPath),
	})
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}

	if err := database.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Repository with an async writer for history/error appends
	writer := db.NewAsyncWriter(db.NewRepository(database, nil).CreateAsyncWriteHandler())
	writer.Start()
	repo := db.NewRepository(database, writer)

	// Shutdown manager coordinates signal handling and ordered teardown.
	// The timeout must outlast a full cascade with warmup waits.
	manager := shutdown.NewManager(logger.Zap(),
		shutdown.WithTimeout(config.CascadeDeadline+30*time.Second),
	)

	// Daily retention cleanup for history and error logs, cancelled when
	// shutdown begins.
	database.StartCleanupSchedulerWithConfig(manager.Context(), cleanupConfig(logger))

	// Wire the service organisms
	generator, err := imagegen.NewService(config, logger)
	if err != nil {
		logger.Fatal("Failed to create generation service", zap.Error(err))
	}
	textClient := llm.NewClient(config, logger)
	synthesizer := evaluation.NewSynthesizer(config, textClient, logger)

	api := handlers.NewAPI(generator, synthesizer, textClient, repo, handlers.APIConfig{
		PromptTokens: config.PromptTokens,
	}, logger)

	serverConfig := handlers.DefaultServerConfig()
	serverConfig.Port = config.Port
	// The write timeout must outlast a full cascade with warmup waits
	serverConfig.WriteTimeout = config.CascadeDeadline + time.Minute
	server := handlers.NewServer(serverConfig, api, logger)

	// Teardown order: stop accepting HTTP traffic, drain pending history
	// writes, then close the database.
	manager.Register("http-server", 10, func(ctx context.Context) error {
		return server.Shutdown(ctx)
	})
	manager.Register("async-writer", 20, func(ctx context.Context) error {
		if !writer.StopWithTimeout(10 * time.Second) {
			return fmt.Errorf("async writer did not drain before timeout")
		}
		return nil
	})
	manager.Register("database", 30, func(ctx context.Context) error {
		return database.Close()
	})

	// Serve until interrupted
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	manager.Start()

	exitCode = core.ExitCodeSuccess
	select {
	case <-manager.Context().Done():
		exitCode = manager.ExitCode()
	case err := <-errCh:
		if err != nil {
			logger.Error("Server failed", zap.Error(err))
			exitCode = core.ExitCodeError
		}
	}

	if err := manager.Shutdown(); err != nil {
		logger.Error("Shutdown completed with errors", zap.Error(err))
		if exitCode == core.ExitCodeSuccess {
			exitCode = core.ExitCodeError
		}
	}

	logger.Info("Goodbye!", zap.String("exit", core.ExitCodeName(exitCode)))
	if syncErr := logger.Sync(); syncErr != nil {
		fmt.Printf("Failed to sync logger: %v\n", syncErr)
	}
	os.Exit(exitCode)
}

// runStartupValidation performs comprehensive startup validation.
//
// Returns the appropriate exit code:
//   - ExitCodeSuccess (0) if all validations pass
//   - ExitCodeError (1) if any validation fails
func runStartupValidation(logger *logging.Logger) int {
	logger.Info("Starting startup validation...")

	allowSelfSigned := os.Getenv("ALLOW_SELF_SIGNED_CERTS") == "true"
	skipNetwork := os.Getenv("SKIP_NETWORK_CHECKS") == "true"

	suite := validation.NewValidationSuite().
		WithAllowSelfSignedCerts(allowSelfSigned).
		WithSkipNetwork(skipNetwork).
		WithShowProgress(true)

	result := suite.Validate()

	if !result.Success {
		logger.Error("Configuration validation failed",
			zap.Int("passed", result.PassedSteps),
			zap.Int("failed", result.FailedSteps),
			zap.Duration("duration", result.Duration),
		)

		// Log individual failures for debugging
		for _, step := range result.Steps {
			if step.Status == validation.StepFailed {
				logger.Error("Validation step failed",
					zap.String("step", step.Name),
					zap.String("message", step.Message),
					zap.Error(step.Error),
				)
			}
		}

		return core.ExitCodeError
	}

	logger.Info("Configuration validation passed",
		zap.Int("checks_passed", result.PassedSteps),
		zap.Int("warnings", result.Warnings),
		zap.Duration("duration", result.Duration),
	)

	return core.ExitCodeSuccess
}

// migrationsURL normalizes a migrations path into the file:// URL format
// the migration driver expects.
func migrationsURL(path string) string {
	if strings.HasPrefix(path, "file://") {
		return path
	}
	return "file://" + strings.TrimPrefix(path, "./")
}

// cleanupConfig builds the retention scheduler configuration, logging each
// run's outcome.
func cleanupConfig(logger *logging.Logger) db.CleanupSchedulerConfig {
	config := db.DefaultCleanupSchedulerConfig()
	config.RetentionDays = core.ParseIntEnv("RETENTION_DAYS", config.RetentionDays)
	config.OnCleanup = func(result db.CleanupResult, err error) {
		if err != nil {
			logger.Error("Retention cleanup failed", zap.Error(err))
			return
		}
		logger.Info("Retention cleanup complete",
			zap.Int64("history_deleted", result.GenerationHistoryDeleted),
			zap.Int64("error_logs_deleted", result.ErrorLogDeleted),
			zap.Duration("duration", result.Duration),
		)
	}
	return config
}
