package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/molinosatl/invdash/internal/api"
	"github.com/molinosatl/invdash/internal/config"
	"github.com/molinosatl/invdash/internal/session"
)

var (
	version   string
	buildDate string
)

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("nivel de log inválido %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// main parses command-line flags, resolves the configuration and starts
// the interactive shell.
func main() {
	var showVer bool

	opts := config.Defaults()
	flag.StringVar(&opts.BaseURL, "url", opts.BaseURL, "URL base del backend")
	flag.DurationVar(&opts.Timeout, "timeout", opts.Timeout, "tiempo máximo por petición")
	flag.StringVar(&opts.Config, "config", opts.Config, "ruta del archivo de configuración JSON")
	flag.StringVar(&opts.SessionFile, "session", opts.SessionFile, "ruta del archivo de sesión")
	flag.StringVar(&opts.LogLevel, "log", opts.LogLevel, "nivel de log (debug|info|warn|error)")
	flag.BoolVar(&showVer, "version", false, "mostrar versión y fecha de compilación")
	flag.Parse()

	if showVer {
		fmt.Printf("invdash\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	opts = config.Resolve(opts)

	logger, err := newLogger(opts.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	sess, err := session.NewFileStore(opts.SessionFile)
	if err != nil {
		log.Fatal(err)
	}

	client := api.New(opts.BaseURL, sess,
		api.WithTimeout(opts.Timeout),
		api.WithLogger(logger),
		api.WithOnUnauthorized(func() {
			fmt.Println("La sesión expiró. Inicie sesión nuevamente con 'login'.")
		}),
	)

	sh := newShell(client, sess, os.Stdin, os.Stdout)
	sh.run()
}
