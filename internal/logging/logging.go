// Package logging wires zerolog into the event bus so the server and the
// heal pass report through one structured logger.
package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	eventbus "github.com/graphmend/graphmend/internal/eventbus"
	events "github.com/graphmend/graphmend/internal/events"
	reqid "github.com/graphmend/graphmend/internal/reqid"
)

// New returns a logger writing to w at the given level.
// Unknown level strings fall back to info.
func New(w io.Writer, level string) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// NewConsole returns a logger with human-readable output for interactive use.
func NewConsole(level string) zerolog.Logger {
	cw := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(cw).Level(lvl).With().Timestamp().Logger()
}

// Register subscribes log and the event bus so request and heal events are
// logged. The returned func removes the subscriptions.
func Register(log zerolog.Logger) (unsubscribe func()) {
	unsubHTTP := eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
		ev := log.Info()
		if e.Status >= 500 {
			ev = log.Error()
		}
		withReqID(ctx, ev).
			Str("method", e.Request.Method).
			Str("path", e.Request.URL.Path).
			Int("status", e.Status).
			Dur("duration", e.Duration).
			Msg("http request")
	})

	unsubGQL := eventbus.Subscribe(func(ctx context.Context, e events.GraphQLFinish) {
		ev := log.Info()
		if len(e.Errors) > 0 {
			ev = log.Warn()
			msgs := make([]string, len(e.Errors))
			for i, err := range e.Errors {
				msgs[i] = err.Error()
			}
			ev = ev.Strs("errors", msgs)
		}
		withReqID(ctx, ev).
			Str("operation", e.OperationName).
			Str("type", e.OperationType).
			Dur("duration", e.Duration).
			Msg("graphql operation")
	})

	unsubHeal := eventbus.Subscribe(func(ctx context.Context, e events.SchemaHeal) {
		log.Info().
			Strs("removed", e.Removed).
			Int("type_count", e.TypeCount).
			Dur("duration", e.Duration).
			Msg("schema heal")
	})

	return func() {
		unsubHTTP()
		unsubGQL()
		unsubHeal()
	}
}

func withReqID(ctx context.Context, ev *zerolog.Event) *zerolog.Event {
	if rid, ok := reqid.FromContext(ctx); ok {
		return ev.Int64("req_id", rid)
	}
	return ev
}
