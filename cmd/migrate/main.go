package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/tradesphere/tradesphere-backend/pkg/config"
	"github.com/tradesphere/tradesphere-backend/pkg/logger"
	"github.com/tradesphere/tradesphere-backend/pkg/migrate"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		ServiceName: "tradesphere-migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})

	ctx := context.Background()

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	db, err := sql.Open("postgres", cfg.DB.DSN)
	if err != nil {
		log.Error(ctx, "opening database", err)
		os.Exit(1)
	}
	defer db.Close()

	switch command {
	case "up":
		err = migrate.Up(ctx, db)
	case "down":
		err = migrate.Down(ctx, db)
	case "status":
		err = migrate.Status(ctx, db)
	default:
		err = fmt.Errorf("unknown command %q (expected up, down, or status)", command)
	}
	if err != nil {
		log.Error(ctx, "running migration command", err)
		os.Exit(1)
	}

	log.Info(log.WithField(ctx, "command", command), "migration command completed")
}
