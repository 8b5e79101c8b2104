package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// clockFormat prints wall time down to hundredths, enough to tell frames apart.
const clockFormat = "15:04:05.00"

// newLogger returns the CLI logger writing to w at level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      clockFormat,
		Level:           level,
	})
}

// progress times one step of a command, such as a vault scan.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs the finished step with its duration, e.g.
// "Indexed 42 files (12ms)".
func (p *progress) done(format string, args ...any) {
	elapsed := time.Since(p.start).Round(time.Millisecond)
	p.logger.Infof("%s (%s)", fmt.Sprintf(format, args...), elapsed)
}

type ctxKey struct{}

// withLogger attaches l to ctx so subcommands and their helpers share it.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey{}, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default() for a bare context.
func loggerFromContext(ctx context.Context) *log.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*log.Logger); ok {
			return l
		}
	}
	return log.Default()
}
