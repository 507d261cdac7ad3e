package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/hsdfat8/gridops/internal/config"
	"github.com/hsdfat8/gridops/internal/observability"
)

func main() {
	configPath := flag.String("config", "", "Path to a config file")
	flag.Parse()

	log := observability.New("gridops-main", "")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalw("Failed to load configuration", "error", err)
	}
	if err := observability.SetLevel(cfg.Logging.Level); err != nil {
		log.Warnw("Keeping default log level", "error", err)
	}

	app, err := newApplication(cfg, log)
	if err != nil {
		log.Fatalw("Failed to initialize application", "error", err)
	}

	if err := app.start(); err != nil {
		app.shutdown()
		log.Fatalw("Failed to start HTTP server", "error", err)
	}

	// Run until a signal arrives or the server fails
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Infow("Received signal", "signal", sig.String())
	case err := <-app.httpServer.Errors():
		log.Errorw("HTTP server failed", "error", err)
	}

	app.shutdown()
}
