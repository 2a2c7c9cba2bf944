package main

import (
	"fmt"

	"github.com/bellybank/backend/infra/initializer"
	"github.com/bellybank/backend/webapi"
	log "github.com/charmbracelet/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	deps, logger, err := initializer.Initialize()
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	app := webapi.SetupApp(deps)

	logger.Info("starting server",
		"env", deps.Cfg.Env,
		"addr", deps.Cfg.Server.Addr,
	)
	return app.Listen(deps.Cfg.Server.Addr)
}
