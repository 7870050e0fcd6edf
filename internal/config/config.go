// Package config provides functionality for managing configuration
// options for the client using command-line flags and environment
// variables.
package config

import (
	"encoding/json"
	"log"
	"os"
	"time"
)

// Options holds the configuration values for the client.
type Options struct {
	// BaseURL is the root of the inventory backend API.
	BaseURL string

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// SessionFile is where the bearer token and profile persist
	// between runs.
	SessionFile string

	// LogLevel is the minimum zap level (debug, info, warn, error).
	LogLevel string

	// Config is the path to an optional JSON config file.
	Config string
}

// Defaults returns the built-in configuration.
func Defaults() *Options {
	return &Options{
		BaseURL:     "http://localhost:8000",
		Timeout:     30 * time.Second,
		SessionFile: "session.json",
		LogLevel:    "warn",
	}
}

// Resolve layers the configuration sources onto opts: values from the
// optional JSON config file override what the caller set from flags, and
// environment variables override both.
func Resolve(opts *Options) *Options {
	if configPath := os.Getenv("INVDASH_CONFIG"); configPath != "" {
		opts.Config = configPath
	}

	if opts.Config != "" {
		if _, err := os.Stat(opts.Config); err == nil {
			data, err := os.ReadFile(opts.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			var fileOpts struct {
				BaseURL     string `json:"base_url"`
				TimeoutSecs int    `json:"timeout_seconds"`
				SessionFile string `json:"session_file"`
				LogLevel    string `json:"log_level"`
			}
			if err := json.Unmarshal(data, &fileOpts); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
			if fileOpts.BaseURL != "" {
				opts.BaseURL = fileOpts.BaseURL
			}
			if fileOpts.TimeoutSecs > 0 {
				opts.Timeout = time.Duration(fileOpts.TimeoutSecs) * time.Second
			}
			if fileOpts.SessionFile != "" {
				opts.SessionFile = fileOpts.SessionFile
			}
			if fileOpts.LogLevel != "" {
				opts.LogLevel = fileOpts.LogLevel
			}
		}
	}

	if v := os.Getenv("INVDASH_API_URL"); v != "" {
		opts.BaseURL = v
	}
	if v := os.Getenv("INVDASH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Fatalf("invalid INVDASH_TIMEOUT: %v", err)
		}
		opts.Timeout = d
	}
	if v := os.Getenv("INVDASH_SESSION_FILE"); v != "" {
		opts.SessionFile = v
	}
	if v := os.Getenv("INVDASH_LOG_LEVEL"); v != "" {
		opts.LogLevel = v
	}

	return opts
}
