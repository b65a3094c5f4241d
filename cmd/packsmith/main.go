// Command packsmith runs the modpack build orchestration server.
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/packsmith/packsmith/client"
	"github.com/packsmith/packsmith/internal/api"
	"github.com/packsmith/packsmith/internal/auth"
	"github.com/packsmith/packsmith/internal/config"
	"github.com/packsmith/packsmith/internal/hub"
	"github.com/packsmith/packsmith/internal/runner"
	"github.com/packsmith/packsmith/internal/store"
	"github.com/packsmith/packsmith/internal/validate"
	"github.com/packsmith/packsmith/internal/versions"
)

func main() {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:          "packsmith",
		Short:        "Modpack build orchestration server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(logLevel)
		},
	}
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(logLevel string) error {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "packsmith",
		Level: hclog.LevelFromString(logLevel),
	})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	specStore, err := store.New(cfg.SpecFile, nil)
	if err != nil {
		return fmt.Errorf("open spec store: %w", err)
	}

	upstream := client.NewBreakerClient(client.DefaultClient())
	resolver := versions.NewResolver(upstream, versions.WithLogger(logger.Named("versions")))
	validator := validate.New(resolver)

	tokens := auth.New(cfg.AdminJWTSecret, time.Duration(cfg.AccessTokenExpireMinutes)*time.Minute)
	statusHub := hub.New(tokens, logger.Named("hub"))

	builds := runner.New(runner.Options{
		BuilderBinary: cfg.BuilderBinary,
		SpecDir:       cfg.BuildDir,
		GeneratedDir:  cfg.GeneratedDir,
		WorkDir:       cfg.WorkDir,
	}, specStore, validator, statusHub, logger.Named("runner"))

	router := api.NewRouter(&api.Dependencies{
		AdminToken:     cfg.AdminSecretToken,
		AllowedOrigins: cfg.AllowedOrigins,
		Auth:           tokens,
		Store:          specStore,
		Versions:       resolver,
		Builds:         builds,
		Validator:      validator,
		WebSocket:      statusHub.HandleWebSocket,
		Logger:         logger.Named("api"),
	})

	logger.Info("listening", "address", cfg.Address())
	return http.ListenAndServe(cfg.Address(), router)
}
