package main

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/skillsdiff/supportbot/bot"
	"github.com/skillsdiff/supportbot/core/bootstrap"
	corecmd "github.com/skillsdiff/supportbot/core/cmd"
)

func main() {
	// Local development convenience; the file is optional.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	var db *sqlx.DB
	defer func() {
		if db != nil {
			_ = db.Close()
		}
	}()

	opts := corecmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return bot.LoadConfig(path)
		},
		Bootstrap: func(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			cfg := carrier.CoreConfig()
			res, err := bootstrap.Run(bootstrap.Options{
				Config:          cfg,
				Database:        cfg.Database,
				RequireDatabase: cfg.Support.Journal,
			})
			if err != nil {
				return nil, fmt.Errorf("bootstrap: %w", err)
			}
			db = res.DB
			return bot.New(cfg, res.DB), nil
		},
	}

	if err := corecmd.Run(opts); err != nil {
		log.Fatalf("supportbot: %v", err)
	}
}
