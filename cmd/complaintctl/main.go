package main

import (
	"fmt"
	"os"
	"time"

	"github.com/complaintdesk/portal/internal/config"
	"github.com/complaintdesk/portal/internal/services"
	"github.com/complaintdesk/portal/internal/upstream"
	"github.com/complaintdesk/portal/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath  string
	backendURL  string
	analyzerURL string
	timeout     time.Duration
	verbose     bool

	// Initialized in PersistentPreRunE
	client     *upstream.Client
	complaints *services.ComplaintService
	submission *services.SubmissionService
)

var rootCmd = &cobra.Command{
	Use:   "complaintctl",
	Short: "Command-line access to the complaint portal upstream services",
	Long: `complaintctl submits, analyzes and inspects complaints by talking to the
persistence API and the analyzer directly, using the same client as the portal.

Configuration is read from config.yaml (or --config) with the usual
environment overrides; --backend and --analyzer win over both.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("CONFIG_PATH"), "Path to config.yaml")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "Persistence API base URL")
	rootCmd.PersistentFlags().StringVar(&analyzerURL, "analyzer", "", "Analyzer base URL (defaults to the backend)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Overall command timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		submitCmd,
		analyzeCmd,
		listCmd,
		statsCmd,
		statusCmd,
		healthCmd,
		configCmd,
	)
}

func setup(cmd *cobra.Command, _ []string) error {
	level := "warn"
	if verbose {
		level = "debug"
	}
	logger.InitWithWriter(level, cmd.ErrOrStderr())

	// config init must work without a valid config
	if cmd == configInitCmd {
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client = upstream.NewClient(cfg.Backend, cfg.Analyzer)
	complaints = services.NewComplaintService(client, nil, nil)
	submission = services.NewSubmissionService(client, client, nil, complaints, cfg.Submission)
	return nil
}

func loadConfig() (*config.Config, error) {
	if backendURL != "" {
		os.Setenv("BACKEND_URL", backendURL)
	}
	if analyzerURL != "" {
		os.Setenv("ANALYZER_URL", analyzerURL)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
