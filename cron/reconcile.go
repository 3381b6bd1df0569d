package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"visapoint/services/application"
	"visapoint/utils"
)

// Reconciler is the orchestrator's sweep over pending payments.
type Reconciler interface {
	Reconcile(ctx context.Context) (*application.ReconcileReport, error)
}

const reconcileTimeout = 5 * time.Minute

// StartReconcileCron schedules the pending payment sweep. The returned
// scheduler must be stopped on shutdown.
func StartReconcileCron(schedule string, r Reconciler) (*cron.Cron, error) {
	if schedule == "" {
		schedule = "@every 15m"
	}
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(schedule, func() { RunReconcile(r) })
	if err != nil {
		return nil, err
	}
	utils.GetLogger().Info("Payment reconcile scheduled", zap.String("schedule", schedule))
	c.Start()
	return c, nil
}

// RunReconcile performs one sweep.
func RunReconcile(r Reconciler) {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()
	if _, err := r.Reconcile(ctx); err != nil {
		utils.GetLogger().Error("Payment reconcile failed", zap.Error(err))
		utils.GetMetrics().ErrorsCount.WithLabelValues("reconcile").Inc()
	}
}
