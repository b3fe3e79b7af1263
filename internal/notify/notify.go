// Package notify hands user notifications to a delivery backend.
package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/festy23/kurukatsu/internal/metrics"
)

// Kind identifies what a notification is about.
type Kind string

// Notification kinds.
const (
	KindJoinRequestApproved   Kind = "join_request_approved"
	KindJoinRequestRejected   Kind = "join_request_rejected"
	KindRoleChanged           Kind = "role_changed"
	KindMemberRemoved         Kind = "member_removed"
	KindLeadershipTransferred Kind = "leadership_transferred"
)

// Dispatch statuses recorded in metrics.
const (
	statusSent   = "sent"
	statusFailed = "failed"
)

const defaultDispatchTimeout = 5 * time.Second

// Notification is a message addressed to one user.
type Notification struct {
	UserID   string    `json:"user_id"`
	CircleID string    `json:"circle_id"`
	Kind     Kind      `json:"kind"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	At       time.Time `json:"at"`
}

// Dispatcher delivers a notification synchronously.
type Dispatcher interface {
	Dispatch(ctx context.Context, n Notification) error
}

// Notifier accepts notifications without waiting for delivery.
type Notifier interface {
	Notify(n Notification)
}

// LogDispatcher writes notifications to the log. It is used when no broker is configured.
type LogDispatcher struct {
	logger *zap.SugaredLogger
}

// NewLogDispatcher creates a LogDispatcher.
func NewLogDispatcher(logger *zap.SugaredLogger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

// Dispatch logs n.
func (d *LogDispatcher) Dispatch(_ context.Context, n Notification) error {
	d.logger.Infow("Notification dispatched",
		"user_id", n.UserID,
		"circle_id", n.CircleID,
		"kind", n.Kind,
		"title", n.Title,
	)
	return nil
}

// Async dispatches notifications in the background. Failures are logged and
// never reach the caller.
type Async struct {
	next    Dispatcher
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewAsync wraps next. m may be nil.
func NewAsync(next Dispatcher, logger *zap.SugaredLogger, m *metrics.Metrics) *Async {
	return &Async{
		next:    next,
		logger:  logger,
		metrics: m,
		timeout: defaultDispatchTimeout,
	}
}

// Notify starts delivery of n and returns immediately.
func (a *Async) Notify(n Notification) {
	if n.At.IsZero() {
		n.At = time.Now()
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()

		if err := a.next.Dispatch(ctx, n); err != nil {
			a.metrics.IncNotification(string(n.Kind), statusFailed)
			a.logger.Warnw("Notification dispatch failed",
				"user_id", n.UserID,
				"circle_id", n.CircleID,
				"kind", n.Kind,
				"error", err,
			)
			return
		}
		a.metrics.IncNotification(string(n.Kind), statusSent)
	}()
}

// Wait blocks until all started deliveries have finished.
func (a *Async) Wait() {
	a.wg.Wait()
}
