package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultSlowQuery = 200 * time.Millisecond

// DBTracingConfig controls the spans emitted for GORM statements.
type DBTracingConfig struct {
	Enabled bool
	// LogFullSQL keeps bound variables in db.statement. Leave it off when
	// customer addresses or emails may reach the collector.
	LogFullSQL bool
	SlowQuery  time.Duration
	DBSystem   string
}

type queryStarted struct{}

// InstrumentDB installs otelgorm on db and marks spans of statements slower
// than cfg.SlowQuery. Nothing is installed when cfg.Enabled is false.
func InstrumentDB(db *gorm.DB, cfg DBTracingConfig, log *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.SlowQuery <= 0 {
		cfg.SlowQuery = defaultSlowQuery
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	finish := func(tx *gorm.DB) { annotateStatement(tx, cfg.SlowQuery) }
	cb := db.Callback()
	if err := errors.Join(
		cb.Create().Before("gorm:create").Register("emedico:clock_create", startClock),
		cb.Create().After("gorm:create").Register("emedico:span_create", finish),
		cb.Query().Before("gorm:query").Register("emedico:clock_query", startClock),
		cb.Query().After("gorm:query").Register("emedico:span_query", finish),
		cb.Update().Before("gorm:update").Register("emedico:clock_update", startClock),
		cb.Update().After("gorm:update").Register("emedico:span_update", finish),
		cb.Delete().Before("gorm:delete").Register("emedico:clock_delete", startClock),
		cb.Delete().After("gorm:delete").Register("emedico:span_delete", finish),
		cb.Row().Before("gorm:row").Register("emedico:clock_row", startClock),
		cb.Row().After("gorm:row").Register("emedico:span_row", finish),
		cb.Raw().Before("gorm:raw").Register("emedico:clock_raw", startClock),
		cb.Raw().After("gorm:raw").Register("emedico:span_raw", finish),
	); err != nil {
		return err
	}

	log.Info("database tracing enabled",
		zap.String("db_system", cfg.DBSystem),
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query", cfg.SlowQuery),
	)
	return nil
}

func startClock(tx *gorm.DB) {
	if ctx := tx.Statement.Context; ctx != nil {
		tx.Statement.Context = context.WithValue(ctx, queryStarted{}, time.Now())
	}
}

func annotateStatement(tx *gorm.DB, slow time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	attrs := []attribute.KeyValue{attribute.Int64("db.rows_affected", tx.Statement.RowsAffected)}
	if tx.Statement.Table != "" {
		attrs = append(attrs, attribute.String("db.sql.table", tx.Statement.Table))
	}
	if err := tx.Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if started, ok := ctx.Value(queryStarted{}).(time.Time); ok {
		if took := time.Since(started); took > slow {
			attrs = append(attrs,
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", took.Milliseconds()))
		}
	}
	span.SetAttributes(attrs...)
}
