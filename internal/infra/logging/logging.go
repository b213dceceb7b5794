package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configura el logger global. format "json" escribe una línea JSON por
// evento; cualquier otro valor usa el ConsoleWriter.
func Setup(level, format string) {
	SetupWriter(os.Stderr, level, format)
}

func SetupWriter(out io.Writer, level, format string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	w := out
	if !strings.EqualFold(format, "json") {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.DateTime}
	}
	logger := zerolog.New(w).With().Timestamp().Logger()
	if lvl <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}
	log.Logger = logger

	if err != nil {
		log.Warn().Str("level", level).Msg("unknown log level, using info")
	}
}

// Component devuelve un logger hijo con el campo component.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
