package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"healthbridge/internal/config"
	"healthbridge/internal/platform/logging"
	"healthbridge/internal/server"
)

func main() {
	configFile := flag.String("config", "", "config file (YAML)")
	flag.Parse()

	v, err := config.New(*configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read configuration")
	}
	cfg, err := config.Load(v)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	logging.InitLogger("healthbridge", cfg.Env, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
