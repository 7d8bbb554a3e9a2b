// Command coldvault-server runs the HTTP boundary over an in-memory
// store and account registry.
package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/coldvault/vault/internal/config"
	"github.com/coldvault/vault/internal/server"
	"github.com/coldvault/vault/pkg/account"
	"github.com/coldvault/vault/pkg/store"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("loading configuration")
	}

	if cfg.RequireAuth {
		logger.Warn("RequireAuth enabled: /push and /pull now require a prior /login session token")
	}

	st := store.New(cfg.TreeDepth)
	accounts := account.New()

	srv := server.New(st, accounts, logger, server.Options{
		SaveDir:     cfg.SaveDir,
		RequireAuth: cfg.RequireAuth,
	})

	logger.WithFields(logrus.Fields{
		"addr":       cfg.ListenAddr,
		"tree_depth": cfg.TreeDepth,
		"save_dir":   cfg.SaveDir,
	}).Info("coldvault-server listening")

	if err := srv.Router().Run(cfg.ListenAddr); err != nil {
		logger.WithError(err).Error("server exited")
		os.Exit(1)
	}
}
