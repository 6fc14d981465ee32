package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"visitor-registration/internal/app"
	"visitor-registration/internal/config"
	"visitor-registration/internal/email"
	"visitor-registration/internal/hosts"
	"visitor-registration/internal/nonce"
	"visitor-registration/internal/storage"
	"visitor-registration/internal/visitors"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the visitor registration server",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		fmt.Println("Starting visitor registration server...")
		ServerMain(ctx, provider)
	},
}

// Initialize logger
func initLogger(cfg *config.Config) *slog.Logger {
	// Determine level from config and set it on the handler options.
	var level slog.Level
	switch strings.ToUpper(cfg.LogLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN", "WARNING":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
		println("Invalid log level in config, defaulting to INFO")
	}
	handlerOpts := &slog.HandlerOptions{
		Level: level,
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, handlerOpts))
	slog.SetDefault(logger)

	slog.Debug("Logger initialized", "level", level.String())
	return logger
}

func loadHostDirectory(cfg *config.Config) *hosts.Directory {
	dir := hosts.NewDirectory()
	if err := dir.LoadFile(cfg.HostsFile); err != nil {
		slog.Error("Failed to load host directory", "error", err, "file", cfg.HostsFile)
		os.Exit(1)
	}
	slog.Debug("Host directory loaded", "hosts", dir.Len(), "file", cfg.HostsFile)
	return dir
}

func ServerMain(ctx context.Context, storageProvider storage.Provider) {

	if config.Cfg == nil {
		panic("Config not initialized.")
	}

	initLogger(config.Cfg)

	// Use the provider passed from cobra command (already initialized)
	if storageProvider == nil {
		slog.Error("Storage provider is nil")
		os.Exit(1)
	}

	if err := nonce.InitNonceStore(config.Cfg, storageProvider); err != nil {
		slog.Error("Failed to initialize nonce store", "error", err)
		os.Exit(1)
	}

	engine := visitors.NewEngine(storageProvider)

	hostDir := loadHostDirectory(config.Cfg)

	var mailer *email.Client
	if config.Cfg.Email.Enabled() {
		mailer = email.NewClient(config.Cfg.Email)
	} else {
		slog.Info("Email not configured, host notifications disabled")
	}

	// Initialize HTTP server
	server := app.HTTPServer()

	// Middleware to inject request dependencies into context
	server.Use(func(c *gin.Context) {
		c.Set("Engine", engine)
		c.Next()
	}, func(c *gin.Context) {
		c.Set("Hosts", hostDir)
		c.Set("Mailer", mailer)
		c.Next()
	})

	app.RegisterRoutes(server)

	server.Run()
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
