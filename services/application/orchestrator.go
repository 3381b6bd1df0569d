// Package application drives wizard sessions: it stores state, runs the
// effects the reducer asks for and feeds their results back in.
package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"visapoint/database"
	"visapoint/database/repository"
	"visapoint/models"
	"visapoint/services/catalog"
	"visapoint/services/identity"
	"visapoint/services/notification"
	"visapoint/services/payment"
	"visapoint/services/storage"
	"visapoint/services/wizard"
	"visapoint/utils"
)

var (
	ErrServiceUnavailable = errors.New("visa service is not available")
	ErrForbidden          = errors.New("application belongs to another user")
	ErrAlreadyPaid        = errors.New("application is already paid")
	ErrUnknownOrder       = errors.New("unknown payment order")
)

// Options are the runtime settings of the orchestrator.
type Options struct {
	Currency     string
	APIBaseURL   string
	PollInterval time.Duration
	PollTimeout  time.Duration
}

// Deps are the collaborators of the orchestrator.
type Deps struct {
	Store    *repository.Store
	Catalog  *catalog.Service
	Identity *identity.Resolver
	Uploads  *storage.Adapter
	Gateway  payment.Gateway
	Notifier notification.Notifier
	Sessions SessionStore
	Pending  PendingStore
}

// Outcome is the result of one wizard call.
type Outcome struct {
	State wizard.State `json:"state"`
	// User is set when the call signed the applicant in or created an account.
	User    *models.User     `json:"-"`
	Account identity.Outcome `json:"account,omitempty"`
}

// Orchestrator owns the wizard sessions of this process.
type Orchestrator struct {
	store    *repository.Store
	catalog  *catalog.Service
	identity *identity.Resolver
	uploads  *storage.Adapter
	gateway  payment.Gateway
	watcher  *payment.Watcher
	notifier notification.Notifier
	sessions SessionStore
	pending  PendingStore
	opts     Options
	locks    *keyedMutex
}

func New(d Deps, opts Options) *Orchestrator {
	o := &Orchestrator{
		store:    d.Store,
		catalog:  d.Catalog,
		identity: d.Identity,
		uploads:  d.Uploads,
		gateway:  d.Gateway,
		notifier: d.Notifier,
		sessions: d.Sessions,
		pending:  d.Pending,
		opts:     opts,
		locks:    newKeyedMutex(),
	}
	o.watcher = payment.NewWatcher(d.Gateway, payment.Handlers{
		OnStatus:  o.onPollStatus,
		OnTimeout: o.onPollTimeout,
	}, opts.PollInterval, opts.PollTimeout)
	return o
}

// Close stops every running status poll.
func (o *Orchestrator) Close() {
	o.watcher.Close()
}

// Start opens a session for the service with the given slug. userID and
// email come from the caller's login, if any.
func (o *Orchestrator) Start(ctx context.Context, slug, language, userID, email string) (*Outcome, error) {
	svc, err := o.catalog.GetBySlug(ctx, slug)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrServiceUnavailable
	}
	if err != nil {
		return nil, err
	}
	if !svc.Active {
		return nil, ErrServiceUnavailable
	}

	s := wizard.New(uuid.New().String(), *svc, o.opts.Currency)
	s.Language = language
	s.UserID = userID
	s.Applicant.Email = email
	s.UpdatedAt = time.Now()
	if err := o.sessions.Save(ctx, s); err != nil {
		return nil, err
	}
	utils.GetLogger().Info("Wizard session started",
		zap.String("sessionID", s.SessionID), zap.String("service", svc.Slug))
	return &Outcome{State: s.Public()}, nil
}

// Get returns the browser view of a session.
func (o *Orchestrator) Get(ctx context.Context, sessionID string) (*wizard.State, error) {
	s, err := o.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	pub := s.Public()
	return &pub, nil
}

// Dispatch applies ev to the session and runs the resulting effects.
func (o *Orchestrator) Dispatch(ctx context.Context, sessionID string, ev wizard.Event) (*Outcome, error) {
	unlock := o.locks.Lock(sessionID)
	defer unlock()

	s, err := o.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return o.apply(ctx, *s, ev)
}

// apply runs ev and every event produced by its effects, then saves the
// state. A rejected first event or a failing effect leaves the stored state
// untouched.
func (o *Orchestrator) apply(ctx context.Context, s wizard.State, ev wizard.Event) (*Outcome, error) {
	out := &Outcome{}
	queue := []wizard.Event{o.prepare(s, ev)}
	cur := s
	for first := true; len(queue) > 0; first = false {
		ev := queue[0]
		queue = queue[1:]

		next, effects, err := wizard.Reduce(cur, ev)
		if err != nil {
			if first {
				return nil, err
			}
			utils.GetLogger().Warn("Effect result rejected",
				zap.String("sessionID", s.SessionID), zap.String("event", ev.Name()), zap.Error(err))
			continue
		}
		cur = next

		for _, eff := range effects {
			results, err := o.run(ctx, cur, eff, out)
			if err != nil {
				return nil, err
			}
			queue = append(queue, results...)
		}
	}

	cur.UpdatedAt = time.Now()
	if err := o.sessions.Save(ctx, cur); err != nil {
		return nil, err
	}
	out.State = cur.Public()
	return out, nil
}

// prepare fills values the browser never supplies.
func (o *Orchestrator) prepare(s wizard.State, ev wizard.Event) wizard.Event {
	if e, ok := ev.(wizard.StartNewPayment); ok && e.OrderID == "" {
		e.OrderID = payment.GenerateOrderID(s.ApplicationID)
		return e
	}
	return ev
}

func (o *Orchestrator) run(ctx context.Context, s wizard.State, eff wizard.Effect, out *Outcome) ([]wizard.Event, error) {
	switch e := eff.(type) {
	case wizard.CreateApplication:
		ev, err := o.createApplication(ctx, s, e, out)
		if err != nil {
			return nil, err
		}
		return []wizard.Event{ev}, nil
	case wizard.InitiatePayment:
		return []wizard.Event{o.initiatePayment(ctx, s, e)}, nil
	case wizard.StartStatusPoll:
		o.watcher.Start(s.SessionID, e.OrderID, e.PaymentID)
		return nil, nil
	case wizard.StopStatusPoll:
		o.watcher.Stop(s.SessionID)
		return nil, nil
	case wizard.FinalizePayment:
		inv, err := o.finalize(ctx, finalizeInput(e))
		if err != nil {
			// The pending record stays so the reconcile job retries.
			utils.GetLogger().Error("Failed to finalize payment",
				zap.String("orderID", e.OrderID), zap.Error(err))
			utils.GetMetrics().ErrorsCount.WithLabelValues("finalize_payment").Inc()
			return nil, nil
		}
		return []wizard.Event{wizard.PaymentFinalized{InvoiceID: inv.ID}}, nil
	case wizard.AssignOrderID:
		if err := o.store.Applications.SetOrderID(ctx, e.ApplicationID, e.OrderID); err != nil {
			return nil, fmt.Errorf("failed to assign order id: %w", err)
		}
		return nil, nil
	}
	return nil, fmt.Errorf("unhandled effect %T", eff)
}

// keyedMutex serialises work per session id.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLock)}
}

func (k *keyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	l := k.locks[key]
	if l == nil {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
