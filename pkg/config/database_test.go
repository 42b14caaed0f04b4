package config

import (
	"testing"

	"github.com/anonto42/nano-blog/backend/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type row struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = prev })
	return logs
}

func TestOpenSQLRejectsUnknownDriver(t *testing.T) {
	_, err := OpenSQL("mysql", "")
	assert.Error(t, err)

	_, err = OpenSQL("postgres", "")
	assert.Error(t, err)
}

func TestSQLLoggingSkipsMissingRows(t *testing.T) {
	db, err := OpenSQL("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	require.NoError(t, db.AutoMigrate(&row{}))
	logs := observeLogs(t)

	var r row
	require.Error(t, db.First(&r, 42).Error)
	assert.Zero(t, logs.FilterMessage("SQL query failed").Len())

	require.Error(t, db.Table("missing_table").First(&r).Error)
	failed := logs.FilterMessage("SQL query failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.ErrorLevel, failed[0].Level)
	assert.Contains(t, failed[0].ContextMap()["sql"], "missing_table")
}
