package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/transcriptomics-backend/internal/domain"
	"github.com/yungbote/transcriptomics-backend/internal/platform/logger"
)

var dbSeq atomic.Int64

// DB returns a fresh in-memory sqlite database with the service schema
// migrated. Every call gets its own database, so tests stay isolated
// without a shared-server dependency.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	// cache=shared keeps the named in-memory db alive across the pool's
	// connections for the lifetime of the test.
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		tb.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(&domain.ExperimentResult{}, &domain.GeneExpression{}); err != nil {
		tb.Fatalf("failed to migrate test db: %v", err)
	}
	tb.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	return logger.NewNop()
}

func PtrInt64(v int64) *int64       { return &v }
func PtrFloat64(v float64) *float64 { return &v }
func PtrString(v string) *string    { return &v }
