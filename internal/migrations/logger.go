package migrations

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// gooseLogger routes goose output through zerolog. A nil logger means the
// global zerolog logger, read at call time so later reconfiguration applies.
type gooseLogger struct {
	logger *zerolog.Logger
}

func (g gooseLogger) target() *zerolog.Logger {
	if g.logger != nil {
		return g.logger
	}
	return &log.Logger
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.target().Info().Str("component", "migrations").Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	g.target().Fatal().Str("component", "migrations").Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
