// Command admin runs maintenance tasks against the portal database.
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/s/eduportal/internal/config"
	"github.com/s/eduportal/internal/database"
	"github.com/s/eduportal/internal/logging"
	"github.com/s/eduportal/internal/notify"
	"github.com/s/eduportal/internal/progress"
	"github.com/s/eduportal/internal/storage"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 1
	}
	logs, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		return 1
	}
	defer logs.Closer()
	log := logs.Base.Named("admin")

	// set up DB
	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Error("db connect", zap.Error(err))
		return 1
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Error("db handle", zap.Error(err))
		return 1
	}
	defer sqlDB.Close()

	repo := storage.NewRepository(db)
	cli := commandLine{
		ctx:     context.Background(),
		db:      sqlDB,
		store:   repo,
		tracker: progress.NewTracker(repo, notify.NewWhatsApp(cfg.AdminPhone), log),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		return 1
	}
	return 0
}
