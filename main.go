package main

import (
	"os"

	"github.com/soocke/skillcheck-bot-go/app"
	"github.com/soocke/skillcheck-bot-go/config"
)

func main() {
	env, envErr := config.LoadEnv()

	// Set up logger
	logger := NewLogger(env.LogLevel, env.LogFile)
	if envErr != nil {
		logger.Warn("env file ignored", "error", envErr)
	}

	// Config from file; bad keys keep their defaults.
	cfg, err := config.Load(env.ConfigPath)
	if err != nil {
		logger.Warn("config fallback", "path", env.ConfigPath, "error", err)
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	application, err := app.NewApp("Skill Check Bot", cfg, env.ConfigPath, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	application.Start()
}
