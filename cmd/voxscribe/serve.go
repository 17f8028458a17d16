package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kbukum/voxscribe/api"
	"github.com/kbukum/voxscribe/auth"
	"github.com/kbukum/voxscribe/bootstrap"
	"github.com/kbukum/voxscribe/server"
	"github.com/kbukum/voxscribe/server/middleware"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags.configFile, flags.envFile)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

// serve starts the backends, then the HTTP server, and blocks until a
// shutdown signal.
func serve(ctx context.Context, cfg *Config) error {
	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}
	log := app.Logger

	svc, err := newService(ctx, cfg, log)
	if err != nil {
		return err
	}
	for _, c := range svc.components {
		if err := app.RegisterComponent(c); err != nil {
			return err
		}
	}

	validators, err := auth.Build(&cfg.Auth)
	if err != nil {
		return err
	}

	info := make(map[string]any)
	for _, s := range cfg.settings() {
		app.Summary.AddSetting(s.Key, s.Value)
		info[s.Key] = s.Value
	}

	srv := server.New(cfg.Server, log)
	srv.ApplyMiddleware(ctx)
	srv.RegisterDefaultEndpoints(cfg.Name, app.Components.HealthAll, info, svc.metricsHandler())

	requireAuth := middleware.GinWrap(middleware.Auth(middleware.AuthConfig{
		Bearer: validators.Bearer,
		APIKey: validators.APIKey,
		Log:    log,
	}))
	api.NewHandler(svc.orchestrator,
		api.WithLogger(log),
		api.WithMaxSizeMB(cfg.Audio.MaxSizeMB),
	).Register(srv.Engine(), requireAuth)

	if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
		return err
	}
	app.OnStop(svc.close)

	return app.Run(ctx)
}
