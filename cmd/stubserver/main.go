// Package main starts the development double of the inventory backend.
package main

import (
	"cmp"
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/molinosatl/invdash/internal/stubserver"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	ctx := context.Background()

	cfg, err := stubserver.LoadConfig(ctx)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := stubserver.OpenDB(cfg.DBPath)
	if err != nil {
		logger.Fatal("cannot open database", zap.Error(err))
	}
	defer db.Close()

	if err := stubserver.SeedAdmin(db, cfg.AdminUser, cfg.AdminPassword); err != nil {
		logger.Fatal("cannot seed admin user", zap.Error(err))
	}

	srv := stubserver.New(db, logger)
	logger.Info("stub backend listening", zap.String("addr", cfg.Addr), zap.String("db", cfg.DBPath))
	if err := http.ListenAndServe(cfg.Addr, srv.Router()); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
