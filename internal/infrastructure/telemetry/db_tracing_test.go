package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestRegisterDBTracing_Disabled(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, RegisterDBTracing(db, DBTracingConfig{}, zap.NewNop()))
	assert.Nil(t, db.Callback().Query().Get("otel_slow_query:after_query"))
}

func TestRegisterDBTracing_RecordsQuerySpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	db := openSQLite(t)
	require.NoError(t, RegisterDBTracing(db, DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: time.Nanosecond,
		TracerProvider:  provider,
	}, zap.NewNop()))
	require.NoError(t, db.Exec("CREATE TABLE deals (deal_id INTEGER PRIMARY KEY)").Error)

	ctx, parent := provider.Tracer("test").Start(context.Background(), "deal_impact.list")
	var ids []int64
	require.NoError(t, db.WithContext(ctx).Table("deals").Where("deal_id > ?", 0).Pluck("deal_id", &ids).Error)
	parent.End()

	var sawQuery, sawSlow bool
	for _, s := range recorder.Ended() {
		if s.Parent().SpanID() == parent.SpanContext().SpanID() {
			sawQuery = true
		}
		for _, kv := range s.Attributes() {
			if kv.Key == "db.slow_query" && kv.Value.AsBool() {
				sawSlow = true
			}
		}
	}
	assert.True(t, sawQuery, "query span should be a child of the caller's span")
	assert.True(t, sawSlow, "a 1ns threshold marks every statement slow")
}
