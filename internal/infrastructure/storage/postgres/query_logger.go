package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"tenantpress/internal/config"
	"tenantpress/pkg/logger"
)

// QueryLogger is a pgx.QueryTracer that logs statements according to
// SQL_LOG_LEVEL. Failed statements are logged unless the level is Silent.
type QueryLogger struct {
	log       *logger.Logger
	level     config.SQLLogLevel
	threshold time.Duration
}

var _ pgx.QueryTracer = (*QueryLogger)(nil)

// NewQueryLogger creates a tracer. threshold only applies to OnlySlow.
func NewQueryLogger(log *logger.Logger, level config.SQLLogLevel, threshold time.Duration) *QueryLogger {
	return &QueryLogger{log: log.WithComponent("sql"), level: level, threshold: threshold}
}

type queryStartKey struct{}

type queryStart struct {
	sql  string
	args int
	at   time.Time
}

func (l *QueryLogger) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	if l.level == config.SQLLogSilent {
		return ctx
	}
	return context.WithValue(ctx, queryStartKey{}, queryStart{sql: data.SQL, args: len(data.Args), at: time.Now()})
}

func (l *QueryLogger) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartKey{}).(queryStart)
	if !ok {
		return
	}
	elapsed := time.Since(start.at)
	entry := l.log.WithContext(ctx).With(
		"sql", start.sql,
		"args", start.args,
		"duration_ms", float64(elapsed.Microseconds())/1000,
	)

	switch {
	case data.Err != nil:
		entry.Warnw("query failed", "error", data.Err)
	case l.level == config.SQLLogAll:
		entry.Infow("query", "rows", data.CommandTag.RowsAffected())
	case l.level == config.SQLLogOnlySlow && elapsed >= l.threshold:
		entry.Warnw("slow query", "rows", data.CommandTag.RowsAffected(), "threshold_ms", l.threshold.Milliseconds())
	}
}
