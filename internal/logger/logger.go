package logger

import (
	"os"

	"github.com/rs/zerolog"
)

func New(env string) zerolog.Logger {
	log := zerolog.New(os.Stderr).With().Timestamp().Str("service", "report-service").Logger()
	switch env {
	case "development":
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.DebugLevel)
	case "test":
		log = log.Level(zerolog.WarnLevel)
	default:
		log = log.Level(zerolog.InfoLevel)
	}
	return log
}
