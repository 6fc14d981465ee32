package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"visitor-registration/internal/config"
	"visitor-registration/internal/storage"
	"visitor-registration/internal/visitors"
)

var (
	cfgFile  string
	cfg      *config.Config
	provider storage.Provider
	engine   *visitors.Engine
)

var rootCmd = &cobra.Command{
	Use:   "visitor-registration",
	Short: "Visitor registration system",
	Long:  `A front desk tool for registering building visitors, checking them out, and keeping the visitor log.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Initialize configuration
		var err error
		if cfgFile != "" {
			cfg, err = config.LoadConfig(cfgFile)
		} else {
			cfg, err = config.LoadConfig()
		}
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		config.Cfg = cfg

		// Initialize storage provider
		provider = storage.NewProvider(&cfg.Storage)
		if provider == nil {
			slog.Error("Failed to initialize storage provider")
			os.Exit(1)
		}

		engine = visitors.NewEngine(provider)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		// Cleanup
		if provider != nil {
			provider.Close()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./instance/config.yaml)")
}
