package pg

import (
	"context"

	"cardduel/internal/platform/logger"

	"github.com/rs/zerolog"
)

// logTracer logs query events through the shared logger
type logTracer struct {
	log logger.Logger
}

// Tracer builds a QueryTracer that writes to log
func Tracer(log logger.Logger) QueryTracer { return &logTracer{log: log} }

func (t *logTracer) OnQuery(ctx context.Context, ev QueryEvent) {
	var e *zerolog.Event
	switch {
	case ev.Err != nil:
		e = t.log.Error().Err(ev.Err)
	case ev.Slow:
		e = t.log.Warn().Bool("slow", true)
	default:
		e = t.log.Debug()
	}
	e.Str("sql", ev.SQL).
		Int("args", len(ev.Args)).
		Int64("elapsed_us", ev.ElapsedUS).
		Msg("pg query")
}
