package main

//	@title		TodoAPI
//	@version	1.0
//	@description	TodoAPI is a task-management backend exposing authenticated CRUD operations over per-user to-do items, secured with stateless bearer tokens.

//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT

//	@host		localhost:8080
//	@BasePath	/

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the token from /auth/login.

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ebogdum/todoapi/auth"
	"github.com/ebogdum/todoapi/config"
	"github.com/ebogdum/todoapi/core"
	_ "github.com/ebogdum/todoapi/docs"
	"github.com/ebogdum/todoapi/server"
	"github.com/ebogdum/todoapi/store"
	"github.com/ebogdum/todoapi/store/postgres"
	"github.com/ebogdum/todoapi/store/schema"
	"github.com/ebogdum/todoapi/store/sqlite"
)

var rootCmd = &cobra.Command{
	Use:   "todoapi",
	Short: "TodoAPI - task-management backend",
	Long: `TodoAPI is a task-management backend exposing authenticated CRUD
operations over per-user to-do items, secured with stateless bearer tokens.`,
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the TodoAPI server",
	Long:  "Start the TodoAPI server with the configured store and API endpoints",
	RunE:  runServer,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long:  "Validate the TodoAPI configuration and display the loaded settings",
	RunE:  validateConfig,
}

var configFilePath string

func main() {
	// Add flags to server command
	serverCmd.Flags().StringVarP(&configFilePath, "config", "c", "", "Path to configuration file")

	// Add subcommands
	configCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(serverCmd, configCmd)

	// If no command specified, default to server
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "server")
	}

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// runServer starts the TodoAPI server
func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.LoadConfigFromFile(configFilePath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger, err := initializeLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			// Log to stderr since logger may not be working
			fmt.Fprintf(os.Stderr, "Failed to sync logger: %v\n", err)
		}
	}()

	logger.Info("Starting TodoAPI server",
		zap.String("store_type", cfg.Store.Type),
		zap.String("listen_addr", cfg.Server.ListenAddr))

	// Initialize the store
	dataStore, err := initializeStore(cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer dataStore.Close()

	// Initialize the authentication core. The signing secret and hasher
	// cost are fixed here and read-only for the process lifetime.
	logger.Info("Initializing authentication")
	codec := auth.NewTokenCodec(cfg.Auth.TokenSecret)
	hasher := auth.NewPasswordHasherWithCost(cfg.Auth.BcryptCost)
	authService := auth.NewService(dataStore, hasher, codec, logger)

	// Initialize the task engine
	engine := core.NewEngine(dataStore, logger)

	// Initialize HTTP router
	logger.Info("Initializing HTTP router")
	router := server.NewRouter(authService, codec, dataStore, engine, &cfg, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", cfg.Server.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Create a deadline for shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	logger.Info("Server exited gracefully")
	return nil
}

// initializeStore opens the configured store backend, running migrations
// first for postgres
func initializeStore(storeCfg config.StoreConfig, logger *zap.Logger) (store.Store, error) {
	switch storeCfg.Type {
	case "postgres":
		logger.Info("Running database migrations")
		if err := schema.RunMigrations(storeCfg.DSN); err != nil {
			return nil, fmt.Errorf("failed to run database migrations: %w", err)
		}
		logger.Info("Initializing postgres store")
		return postgres.NewPostgresStore(storeCfg.DSN, logger)
	case "sqlite":
		logger.Info("Initializing sqlite store", zap.String("path", storeCfg.SQLitePath))
		return sqlite.NewSQLiteStore(storeCfg.SQLitePath, logger)
	default:
		return nil, fmt.Errorf("unknown store type %q", storeCfg.Type)
	}
}

// validateConfig validates the TodoAPI configuration and displays settings
func validateConfig(cmd *cobra.Command, args []string) error {
	fmt.Println("Validating configuration...")

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("❌ Configuration validation failed: %v\n", err)
		return err
	}

	fmt.Println("✅ Configuration is valid")
	fmt.Printf("Listen Address: %s\n", cfg.Server.ListenAddr)
	fmt.Printf("Store Type: %s\n", cfg.Store.Type)
	if cfg.Store.Type == "postgres" {
		fmt.Printf("Store DSN: %s\n", maskDSN(cfg.Store.DSN))
	} else {
		fmt.Printf("SQLite Path: %s\n", cfg.Store.SQLitePath)
	}
	fmt.Printf("Bcrypt Cost: %d\n", cfg.Auth.BcryptCost)
	fmt.Printf("Metrics Enabled: %t\n", cfg.Metrics.Enabled)

	return nil
}

// maskDSN masks sensitive parts of the database DSN for display
func maskDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	// Very simple masking - in practice you'd want more sophisticated logic
	if len(dsn) > 20 {
		return dsn[:10] + "***" + dsn[len(dsn)-7:]
	}
	return "***"
}

// initializeLogger creates a zap logger based on configuration
func initializeLogger(logCfg config.LogConfig) (*zap.Logger, error) {
	var cfg zap.Config

	if logCfg.Format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	// Set log level
	switch logCfg.Level {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	return cfg.Build()
}
