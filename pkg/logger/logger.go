package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// global accessible logger
var (
	log *logrus.Logger
	Log *logrus.Entry
)

func init() {
	InitLogger()
}

// InitLogger configures the shared logger. JSON output is enabled outside
// development so log pipelines can ingest the fields directly.
func InitLogger() {
	log = logrus.New()
	log.SetOutput(os.Stderr)

	env := os.Getenv("ENV")
	if env == "" {
		env = "development"
	}
	if env != "development" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	Log = log.WithFields(logrus.Fields{
		"service": "fritter-backend",
		"env":     env,
	})
}
