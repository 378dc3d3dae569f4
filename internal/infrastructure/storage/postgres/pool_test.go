package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"assetdesk/pkg/logger"
)

func TestReportPoolStats(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}
	stats := func() PoolStats {
		return PoolStats{TotalConns: 3, AcquiredConns: 1, IdleConns: 2, MaxConns: 10}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ReportPoolStats(ctx, stats, 5*time.Millisecond, log)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return logs.FilterMessage("database pool stats").Len() > 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ReportPoolStats did not stop after cancel")
	}

	fields := logs.FilterMessage("database pool stats").All()[0].ContextMap()
	assert.Equal(t, "db-pool", fields["component"])
	assert.EqualValues(t, 3, fields["total"])
	assert.EqualValues(t, 10, fields["max"])
}
