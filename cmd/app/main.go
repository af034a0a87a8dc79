package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/cashbridge/tokenvault/internal/bootstrap"
	"github.com/cashbridge/tokenvault/pkg/mlog"
)

func main() {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "tokenvault: failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := mlog.NewZapLogger(cfg.LogLevel, "tokenvault")
	if err != nil {
		fmt.Fprintf(os.Stderr, "tokenvault: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// LoadConfig has already filled in the dev pepper, so check the raw
	// environment variable to decide whether the fallback is in use.
	if strings.TrimSpace(os.Getenv("TOKEN_PEPPER")) == "" {
		logger.Warn("TOKEN_PEPPER not set, using dev-only fixed pepper")
	}

	launcher := bootstrap.NewLauncher(
		bootstrap.WithLogger(logger),
		bootstrap.RunApp("server", bootstrap.NewServer(cfg, logger)),
	)

	launcher.Run()
}
