package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	appctx "tenantpress/internal/core/context"
	"tenantpress/internal/core/tenant"
)

func TestFromContext_AddsRequestFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := NewFromZap(zap.New(core))

	tenantID := tenant.NewID()
	ctx := WithLogger(context.Background(), log)
	ctx = appctx.WithTrace(ctx, &appctx.TraceContext{TraceID: "t-1", RequestID: "r-1"})
	ctx = tenant.WithID(ctx, tenantID)
	ctx = appctx.WithPrincipal(ctx, &appctx.Principal{UserID: "7"})

	Info(ctx, "hello", "k", "v")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "hello", entries[0].Message)
		assert.Equal(t, "t-1", fields["trace_id"])
		assert.Equal(t, "r-1", fields["request_id"])
		assert.Equal(t, tenantID.String(), fields["tenant_id"])
		assert.Equal(t, "7", fields["user_id"])
		assert.Equal(t, "v", fields["k"])
	}
}

func TestWithComponent(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	NewFromZap(zap.New(core)).WithComponent("executor").Infow("started")

	assert.Equal(t, "executor", logs.All()[0].ContextMap()["component"])
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	l, err := New(Config{Level: "loud", OutputPaths: []string{"stderr"}})
	assert.NoError(t, err)
	assert.False(t, l.Desugar().Core().Enabled(zap.DebugLevel))
	assert.True(t, l.Desugar().Core().Enabled(zap.InfoLevel))
}
