package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/credence/internal/api"
	"github.com/ppiankov/credence/internal/logger"
	"github.com/ppiankov/credence/internal/pipeline"
	"github.com/ppiankov/credence/internal/telemetry"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve exposes analysis and per-user history over HTTP.

Routes:
  POST   /news/analyze            analyze a URL or text (token optional)
  GET    /analysis/history        list saved analyses
  DELETE /analysis/history        delete all saved analyses
  GET    /analysis/:id            fetch one analysis
  DELETE /analysis/:id            delete one analysis
  GET    /analysis/stats/summary  credibility distribution
  GET    /health, /metrics

History routes require "Authorization: Bearer <token>" signed with
auth.jwt_secret (CREDENCE_AUTH_JWT_SECRET). See 'credence token'.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := currentConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	tel := telemetry.NewProvider()
	analyzer, err := pipeline.Build(cfg, log, tel.Metrics, st)
	if err != nil {
		return fmt.Errorf("build analyzer: %w", err)
	}

	if cfg.Auth.JWTSecret == "" {
		log.Warn("auth.jwt_secret not set: history routes will reject every request")
	}

	srv := api.NewServer(cfg, api.Deps{
		Analyzer:  analyzer,
		Store:     st,
		Tokens:    api.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Telemetry: tel,
		Log:       log,
	}, Version)

	log.Info("credence API starting",
		logger.String("addr", cfg.Server.Addr),
		logger.String("store", cfg.Store.Driver),
		logger.Bool("ai", analyzer.AIEnabled()),
	)
	return srv.Start(ctx, cfg.Server.ShutdownTimeout)
}
