package cron

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"visapoint/services/storage"
	"visapoint/utils"
)

// StartUploadSweepCron schedules removal of temp uploads older than maxAge.
func StartUploadSweepCron(schedule, dir string, maxAge time.Duration) (*cron.Cron, error) {
	if schedule == "" {
		schedule = "@every 1h"
	}
	if maxAge <= 0 {
		maxAge = 48 * time.Hour
	}
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(schedule, func() { RunUploadSweep(dir, maxAge) }); err != nil {
		return nil, err
	}
	utils.GetLogger().Info("Upload sweep scheduled", zap.String("schedule", schedule), zap.String("dir", dir))
	c.Start()
	return c, nil
}

// RunUploadSweep performs one pass and returns how many files it removed.
func RunUploadSweep(dir string, maxAge time.Duration) int {
	n, err := storage.SweepStale(dir, maxAge, time.Now())
	if err != nil {
		utils.GetLogger().Error("Upload sweep failed", zap.String("dir", dir), zap.Error(err))
		utils.GetMetrics().ErrorsCount.WithLabelValues("upload_sweep").Inc()
		return n
	}
	if n > 0 {
		utils.GetLogger().Info("Removed stale uploads", zap.Int("count", n))
	}
	return n
}
