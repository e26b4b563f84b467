package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/risk-tracker/internal/analysis"
	"github.com/yourusername/risk-tracker/internal/api"
	"github.com/yourusername/risk-tracker/internal/health"
	"github.com/yourusername/risk-tracker/internal/metrics"
)

var requestTimeout time.Duration

func init() {
	serveCmd.Flags().DurationVar(&requestTimeout, "request-timeout", 2*time.Minute, "Maximum duration of a single analysis request")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis API with health and metrics endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		engine, err := analysis.FromConfig(&cfg.Analysis)
		if err != nil {
			return err
		}
		svc, factory, err := buildService(ctx, engine)
		if err != nil {
			return err
		}
		defer factory.Close()

		checks := map[string]health.Pinger{}
		for name, p := range factory.Pingers() {
			checks[name] = p
		}

		server := health.NewServer(health.Config{
			ServiceName:  cfg.App.Name,
			Version:      Version,
			Commit:       GitCommit,
			Port:         cfg.Server.Port,
			ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
			Logger:       logger,
			Checks:       checks,
		})

		handler := api.NewAnalysisHandler(svc, logger, requestTimeout)
		server.Handle("/api/", api.NewRouter(handler, cfg.Server.AllowedOrigins))
		if cfg.Metrics.Enabled {
			metrics.InitRegistry()
			server.Handle(cfg.Metrics.Path, metrics.Handler())
		}

		if err := server.Start(ctx); err != nil {
			return err
		}
		server.SetReady(true)
		logger.WithField("port", cfg.Server.Port).Info("Risk tracker API ready")

		<-ctx.Done()
		server.SetReady(false)
		return server.Shutdown()
	},
}
