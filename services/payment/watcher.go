package payment

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"visapoint/models"
	"visapoint/utils"
)

// Handlers receive the outcome of a poll. They run on the poll goroutine and
// may call Stop for the same session.
type Handlers struct {
	// OnStatus is called once with the first non-pending status.
	OnStatus func(sessionID, orderID string, res StatusResult)
	// OnTimeout is called when the poll runs out of time without a final status.
	OnTimeout func(sessionID, orderID string)
}

type poll struct {
	gen     uint64
	orderID string
	cancel  context.CancelFunc
}

// Watcher runs at most one status poll per wizard session.
type Watcher struct {
	gateway  Gateway
	handlers Handlers
	interval time.Duration
	timeout  time.Duration

	mu    sync.Mutex
	gen   uint64
	polls map[string]*poll
	base  context.Context
	stop  context.CancelFunc
}

func NewWatcher(gateway Gateway, handlers Handlers, interval, timeout time.Duration) *Watcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	base, stop := context.WithCancel(context.Background())
	return &Watcher{
		gateway:  gateway,
		handlers: handlers,
		interval: interval,
		timeout:  timeout,
		polls:    make(map[string]*poll),
		base:     base,
		stop:     stop,
	}
}

// Start begins polling for the session, replacing any running poll.
func (w *Watcher) Start(sessionID, orderID, paymentID string) {
	w.mu.Lock()
	if old, ok := w.polls[sessionID]; ok {
		old.cancel()
	}
	w.gen++
	ctx, cancel := context.WithTimeout(w.base, w.timeout)
	p := &poll{gen: w.gen, orderID: orderID, cancel: cancel}
	w.polls[sessionID] = p
	handlers := w.handlers
	w.mu.Unlock()

	utils.GetMetrics().PaymentPolls.Inc()
	go w.run(ctx, p, handlers, sessionID, paymentID)
}

// Stop cancels the session's poll without waiting for it to exit.
func (w *Watcher) Stop(sessionID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p, ok := w.polls[sessionID]; ok {
		p.cancel()
		delete(w.polls, sessionID)
	}
}

// Active reports whether a poll is running for the session.
func (w *Watcher) Active(sessionID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.polls[sessionID]
	return ok
}

// Watching reports whether any session is polling for the order.
func (w *Watcher) Watching(orderID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, p := range w.polls {
		if p.orderID == orderID {
			return true
		}
	}
	return false
}

// Close cancels every poll.
func (w *Watcher) Close() {
	w.stop()
	w.mu.Lock()
	w.polls = make(map[string]*poll)
	w.mu.Unlock()
}

func (w *Watcher) run(ctx context.Context, p *poll, h Handlers, sessionID, paymentID string) {
	logger := utils.GetLogger().With(zap.String("sessionId", sessionID), zap.String("orderId", p.orderID))
	defer func() {
		utils.GetMetrics().PaymentPolls.Dec()
		w.release(sessionID, p.gen)
	}()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) && w.current(sessionID, p.gen) {
				logger.Info("Payment status poll timed out")
				if h.OnTimeout != nil {
					h.OnTimeout(sessionID, p.orderID)
				}
			}
			return
		case <-ticker.C:
			res, err := w.check(ctx, paymentID, p.orderID)
			if err != nil {
				if ctx.Err() == nil {
					logger.Warn("Payment status check failed", zap.Error(err))
				}
				continue
			}
			if res.Status == "" || res.Status == models.PaymentPending {
				continue
			}
			if !w.current(sessionID, p.gen) {
				return
			}
			logger.Info("Payment reached final status", zap.String("status", string(res.Status)))
			if h.OnStatus != nil {
				h.OnStatus(sessionID, p.orderID, *res)
			}
			return
		}
	}
}

func (w *Watcher) check(ctx context.Context, paymentID, orderID string) (*StatusResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, w.interval*2)
	defer cancel()
	return w.gateway.CheckPaymentStatus(callCtx, paymentID, orderID)
}

// current reports whether gen is still the session's live poll, so a stopped
// poll whose request was in flight cannot deliver a stale result.
func (w *Watcher) current(sessionID string, gen uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.polls[sessionID]
	return ok && p.gen == gen
}

func (w *Watcher) release(sessionID string, gen uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p, ok := w.polls[sessionID]; ok && p.gen == gen {
		p.cancel()
		delete(w.polls, sessionID)
	}
}
