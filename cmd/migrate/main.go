package main

import (
	"context"
	"fmt"
	"notesauth/internal/config"
	dl "notesauth/internal/core/domain/logging"
	"notesauth/internal/db"
	"notesauth/internal/implementations/logging"
	"os"
)

func main() {
	cfg, err := config.LoadMigrate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logging.NewZapLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := db.ApplyMigrations(cfg.DBDriver, cfg.DatabaseURL); err != nil {
		log.Error(context.Background(), "Could not apply migrations.", dl.Entry("err", err))
		log.Sync()
		os.Exit(1)
	}
	log.Info(context.Background(), "Migrations applied.", dl.Entry("driver", cfg.DBDriver))
}
