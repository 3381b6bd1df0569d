// Package tasks builds the asynq tasks the notification worker consumes.
package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"visapoint/models"
)

const (
	TypeApplicantConfirmation = "notify:applicant_confirmation"
	TypeTeamNotification      = "notify:team"
	TypePaymentConfirmation   = "notify:payment_confirmation"
)

// Options configures enqueued notification tasks.
type Options struct {
	Queue    string
	MaxRetry int
	Timeout  time.Duration
}

func (o Options) asynq() []asynq.Option {
	opts := []asynq.Option{}
	if o.Queue != "" {
		opts = append(opts, asynq.Queue(o.Queue))
	}
	if o.MaxRetry > 0 {
		opts = append(opts, asynq.MaxRetry(o.MaxRetry))
	}
	if o.Timeout > 0 {
		opts = append(opts, asynq.Timeout(o.Timeout))
	}
	return opts
}

func NewApplicantConfirmationTask(msg models.ApplicationMessage, o Options) (*asynq.Task, []asynq.Option, error) {
	return newTask(TypeApplicantConfirmation, msg, o)
}

func NewTeamNotificationTask(msg models.ApplicationMessage, o Options) (*asynq.Task, []asynq.Option, error) {
	return newTask(TypeTeamNotification, msg, o)
}

func NewPaymentConfirmationTask(msg models.PaymentMessage, o Options) (*asynq.Task, []asynq.Option, error) {
	return newTask(TypePaymentConfirmation, msg, o)
}

func newTask(kind string, payload any, o Options) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	return asynq.NewTask(kind, b), o.asynq(), nil
}
