// Package httpserver runs the HTTP listener with graceful shutdown.
//
// Run blocks until the context is canceled or the process receives an
// interrupt or SIGTERM, then drains in-flight requests within the
// configured shutdown timeout:
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server exited", logger.Error(err))
//	}
//
// Healthcheck builds the probe endpoint; pass dependency ping functions
// to turn the liveness probe into a readiness probe.
package httpserver
