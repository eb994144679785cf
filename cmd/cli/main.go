package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nimasrn/wa-messenger/internal/config"
	"github.com/nimasrn/wa-messenger/internal/repository"
	"github.com/nimasrn/wa-messenger/internal/seed"
	"github.com/nimasrn/wa-messenger/pkg/logger"
	"github.com/nimasrn/wa-messenger/pkg/pg"
)

const usage = `usage: cli <command> [--env=path]

commands:
  migrate [--dir=./migrations]   apply pending PostgreSQL migrations
  seed                           insert the demo contacts, groups and templates
`

func main() {
	defer logger.Sync()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := config.Load(getEnvPath()); err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	pgConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
		SSLMode:  config.Get().PostgresSSLMode,
	}

	var err error
	switch os.Args[1] {
	case "migrate":
		err = pg.Migrate(pgConf, getMigrationPath())
	case "seed":
		err = runSeed(pgConf)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func runSeed(conf pg.Config) error {
	data, err := seed.Load(time.Now().UTC())
	if err != nil {
		return err
	}
	db, err := pg.CreateReadWrite(conf, conf, false)
	if err != nil {
		return err
	}
	defer db.Close()

	inserted, err := repository.Seed(context.Background(), db, data.Contacts, data.Groups, data.Templates)
	if err != nil {
		return err
	}
	logger.Info("seed finished", "inserted", inserted)
	return nil
}

func getEnvPath() string {
	if p := flagValue("--env="); p != "" {
		if _, err := os.Stat(p); err != nil {
			logger.Error("failed to open the passed env file", "path", p, "error", err)
			return ""
		}
		return p
	}
	if _, err := os.Stat(".env"); err != nil {
		return ""
	}
	return ".env"
}

func getMigrationPath() string {
	if p := flagValue("--dir="); p != "" {
		return p
	}
	return "./migrations"
}

func flagValue(prefix string) string {
	for _, v := range os.Args[1:] {
		if strings.HasPrefix(v, prefix) {
			return strings.TrimPrefix(v, prefix)
		}
	}
	return ""
}
