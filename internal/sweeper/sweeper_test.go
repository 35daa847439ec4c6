package sweeper

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mail-webhook-relay/internal/config"
	"mail-webhook-relay/internal/metrics"
	"mail-webhook-relay/internal/model"
	"mail-webhook-relay/internal/pipeline"
	"mail-webhook-relay/internal/store"
)

var testMetrics = metrics.NewMetrics()

func newTestPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&model.ForwardRule{}, &model.ForwardedEmail{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return pipeline.New(store.New(db), 30*time.Minute, testMetrics)
}

func TestSweeperRestart(t *testing.T) {
	cfg := &config.SweeperConfig{Enabled: true, IntervalMinutes: 60}
	sw := New(cfg, newTestPipeline(t))

	if err := sw.Start(); err != nil {
		t.Fatalf("first start failed: %v", err)
	}
	if !sw.IsRunning() {
		t.Fatalf("sweeper should be running after Start")
	}
	if sw.NextRun().IsZero() {
		t.Fatalf("sweeper should report a next run time while running")
	}
	if err := sw.Start(); err == nil {
		t.Fatalf("second start while running should fail")
	}
	if err := sw.Stop(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if sw.IsRunning() {
		t.Fatalf("sweeper should not be running after Stop")
	}
	if !sw.NextRun().IsZero() {
		t.Fatalf("stopped sweeper should not report a next run")
	}
	if err := sw.Stop(); err != nil {
		t.Fatalf("stopping a stopped sweeper should be a no-op: %v", err)
	}
}
