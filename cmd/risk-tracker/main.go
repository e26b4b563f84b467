// Package main provides the risk-tracker command line entry point.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/risk-tracker/internal/analysis"
	"github.com/yourusername/risk-tracker/internal/config"
	"github.com/yourusername/risk-tracker/internal/datasource"
	applogger "github.com/yourusername/risk-tracker/internal/logger"
	"github.com/yourusername/risk-tracker/internal/service"
	"github.com/yourusername/risk-tracker/internal/tracing"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	envFile    string
	logger     *logrus.Logger
	cfg        *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional KEY=VALUE file loaded before the configuration")
}

var rootCmd = &cobra.Command{
	Use:   "risk-tracker",
	Short: "Portfolio risk and return analysis",
	Long: `Estimates Sharpe ratio, beta and Value-at-Risk from historical adjusted closes,
finds the maximum-Sharpe long-only allocation and projects prices with Monte Carlo
simulation of geometric Brownian motion.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == versionCmd.Name() {
			return nil
		}
		if err := loadConfig(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return setupDependencies()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "risk-tracker %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	rootCmd.AddCommand(analyzeCmd, serveCmd, importCSVCmd, versionCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig(ctx context.Context) error {
	if err := config.LoadEnvFiles(envFile); err != nil {
		return err
	}

	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	if err := config.ReloadFromEnv(cfg); err != nil {
		return err
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(ctx, cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}
	if cfg.IsProduction() {
		return config.ValidateEnvironment(cfg)
	}
	return nil
}

func setupDependencies() error {
	logger = applogger.NewLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	logger.SetOutput(os.Stderr)

	if err := tracing.Initialize(cfg.Tracing, cfg.App.Name, logger); err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	return nil
}

// buildService wires the configured price source into an analysis service.
// The returned factory owns the source's connections.
func buildService(ctx context.Context, engine analysis.Config) (*service.AnalysisService, *datasource.Factory, error) {
	factory := datasource.NewFactory(cfg, logger)
	source, err := factory.Create(ctx)
	if err != nil {
		factory.Close()
		return nil, nil, fmt.Errorf("failed to create price source: %w", err)
	}

	start, end, err := cfg.Analysis.DefaultDateRange()
	if err != nil {
		factory.Close()
		return nil, nil, err
	}

	svc := service.NewAnalysisService(source, service.Options{
		Engine:       engine,
		DefaultStart: start,
		DefaultEnd:   end,
	}, logger)
	return svc, factory, nil
}
