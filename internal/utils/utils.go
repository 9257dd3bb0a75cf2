package utils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	log "github.com/sirupsen/logrus"
)

var Log = logrus.New()

func SetLogLevel(level string) {
	// We are not using logrus' trace and panic levels
	switch strings.ToLower(level) {
	case "debug":
		Log.SetLevel(log.DebugLevel)
	case "info":
		Log.SetLevel(log.InfoLevel)
	case "warning", "warn":
		Log.SetLevel(log.WarnLevel)
	case "error":
		Log.SetLevel(log.ErrorLevel)
	case "fatal":
		Log.SetLevel(log.FatalLevel)
	default:
		log.Fatal("Bad log level string")
	}
}

// GetAbsStorePath resolves the tracking store path and makes sure its
// directory exists.
func GetAbsStorePath(storePath string) (string, error) {
	if storePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		storePath = filepath.Join(home, ".config", "featwatch", "featwatch.sqlite")
	}
	abs, err := filepath.Abs(storePath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", err
	}
	return abs, nil
}
