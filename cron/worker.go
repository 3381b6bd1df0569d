package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"visapoint/config"
	"visapoint/models"
	"visapoint/services/notification"
	"visapoint/services/tasks"
	"visapoint/utils"
)

// QueueRedisOpt is the asynq connection for the notification queue.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// NewNotificationMux routes each notification task type to its sender.
func NewNotificationMux(sender notification.Sender) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeApplicantConfirmation, handleApplicationTask(sender.SendApplicantConfirmation))
	mux.HandleFunc(tasks.TypeTeamNotification, handleApplicationTask(sender.SendTeamNotification))
	mux.HandleFunc(tasks.TypePaymentConfirmation, handlePaymentTask(sender))
	return mux
}

// InitNotificationWorker runs the asynq worker in the background and
// returns the server so main can shut it down.
func InitNotificationWorker(sender notification.Sender) *asynq.Server {
	logger := utils.GetLogger()
	queue := config.AppConfig.NotificationQueue
	workers := config.AppConfig.NotificationWorkers
	if workers <= 0 {
		workers = 5
	}

	srv := asynq.NewServer(
		QueueRedisOpt(),
		asynq.Config{
			Concurrency: workers,
			Queues: map[string]int{
				queue:     2,
				"default": 1,
			},
			RetryDelayFunc: func(n int, _ error, _ *asynq.Task) time.Duration {
				return time.Duration(n*n+1) * 10 * time.Second
			},
		},
	)
	mux := NewNotificationMux(sender)

	go monitorRedisConnection()

	go func() {
		logger.Info("Starting notification worker", zap.String("queue", queue), zap.Int("concurrency", workers))
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				break
			}
			logger.Error("Notification worker failed to start",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Fatal("Notification worker gave up")
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

func handleApplicationTask(send func(context.Context, models.ApplicationMessage) error) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var msg models.ApplicationMessage
		if err := json.Unmarshal(task.Payload(), &msg); err != nil {
			// A malformed payload will never succeed.
			return fmt.Errorf("invalid %s payload: %v: %w", task.Type(), err, asynq.SkipRetry)
		}
		if err := send(ctx, msg); err != nil {
			utils.GetLogger().Warn("Notification delivery failed",
				zap.String("type", task.Type()), zap.String("applicationID", msg.ApplicationID), zap.Error(err))
			return err
		}
		return nil
	}
}

func handlePaymentTask(sender notification.Sender) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var msg models.PaymentMessage
		if err := json.Unmarshal(task.Payload(), &msg); err != nil {
			return fmt.Errorf("invalid %s payload: %v: %w", task.Type(), err, asynq.SkipRetry)
		}
		if err := sender.SendPaymentConfirmation(ctx, msg); err != nil {
			utils.GetLogger().Warn("Payment confirmation delivery failed",
				zap.String("applicationID", msg.ApplicationID), zap.String("invoice", msg.InvoiceNumber), zap.Error(err))
			return err
		}
		return nil
	}
}

// monitorRedisConnection pings the queue database to surface outages in the logs.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			utils.GetLogger().Warn("Notification queue Redis unreachable", zap.Error(err))
		}
		time.Sleep(10 * time.Second)
	}
}
