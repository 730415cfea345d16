package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvConfigPath = "SKILLCHECK_CONFIG"
	EnvLogLevel   = "SKILLCHECK_LOG_LEVEL"
	EnvLogFile    = "SKILLCHECK_LOG_FILE"

	DefaultPath = "config.json"
)

// Env carries process-level settings resolved before the config file is read.
type Env struct {
	ConfigPath string
	LogLevel   slog.Level
	LogFile    string
}

// LoadEnv loads the given dotenv files (".env" when none are named) into the
// process environment and resolves Env from it. Missing dotenv files are not an error.
func LoadEnv(files ...string) (Env, error) {
	env := Env{ConfigPath: DefaultPath, LogLevel: slog.LevelInfo}
	if len(files) == 0 {
		files = []string{".env"}
	}
	var loadErr error
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			loadErr = errors.Join(loadErr, err)
		}
	}
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		env.ConfigPath = p
	}
	if lvl := strings.TrimSpace(os.Getenv(EnvLogLevel)); lvl != "" {
		if err := env.LogLevel.UnmarshalText([]byte(lvl)); err != nil {
			loadErr = errors.Join(loadErr, err)
			env.LogLevel = slog.LevelInfo
		}
	}
	env.LogFile = strings.TrimSpace(os.Getenv(EnvLogFile))
	return env, loadErr
}
