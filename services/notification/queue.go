package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"visapoint/models"
	"visapoint/services/tasks"
)

// Enqueuer is the part of *asynq.Client the queue needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Queue hands notifications to the asynq worker, which retries failures.
type Queue struct {
	client Enqueuer
	opts   tasks.Options
}

func NewQueue(client Enqueuer, opts tasks.Options) *Queue {
	return &Queue{client: client, opts: opts}
}

var _ Notifier = (*Queue)(nil)

func (q *Queue) NotifyApplicationSubmitted(ctx context.Context, msg models.ApplicationMessage) error {
	applicant, aOpts, err := tasks.NewApplicantConfirmationTask(msg, q.opts)
	if err != nil {
		return err
	}
	team, tOpts, err := tasks.NewTeamNotificationTask(msg, q.opts)
	if err != nil {
		return err
	}
	return errors.Join(
		q.enqueue(ctx, applicant, aOpts),
		q.enqueue(ctx, team, tOpts),
	)
}

func (q *Queue) NotifyPaymentConfirmed(ctx context.Context, msg models.PaymentMessage) error {
	task, opts, err := tasks.NewPaymentConfirmationTask(msg, q.opts)
	if err != nil {
		return err
	}
	return q.enqueue(ctx, task, opts)
}

func (q *Queue) enqueue(ctx context.Context, task *asynq.Task, opts []asynq.Option) error {
	if _, err := q.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", task.Type(), err)
	}
	return nil
}
