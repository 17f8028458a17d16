// Package bootstrap runs the lifecycle of a voxscribe process.
//
// An App validates the typed configuration, initializes the global logger
// and starts registered components in order. Backends block in Start until
// they are ready, so a model that never comes up fails startup. After the
// configure callbacks and hooks have run, the startup summary lists the
// backends, routes and live health.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(diarizer)
//	app.RegisterComponent(srv)
//	return app.Run(ctx)
//
// Long-running services use Run, which blocks until SIGINT or SIGTERM.
// One-shot commands use RunTask.
package bootstrap
