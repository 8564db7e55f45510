package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/azdkit/hhiwi/cmd"
	"github.com/azdkit/hhiwi/internal/config"
	"github.com/azdkit/hhiwi/internal/logger"
)

// env holds the settings read from the process environment (and .env).
type env struct {
	ConfigPath string `envconfig:"HHIWI_CONFIG"`
	LogLevel   string `envconfig:"HHIWI_LOG_LEVEL" default:"info"`
}

func main() {
	// A .env next to the binary is optional; missing files are fine.
	_ = godotenv.Load()

	var e env
	if err := envconfig.Process("", &e); err != nil {
		_, _ = os.Stderr.WriteString("environment error: " + err.Error() + "\n")
		os.Exit(2)
	}
	if e.ConfigPath == "" {
		e.ConfigPath = config.DefaultPath
	}

	log, err := logger.New(e.LogLevel)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger init error: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	cmd.Execute(cmd.Options{Log: log, ConfigPath: e.ConfigPath})
}
