// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package mail

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"yamdb/internal/metrics"
)

// ErrUnavailable is returned while the breaker is open.
var ErrUnavailable = errors.New("mail relay unavailable")

const breakerName = "smtp"

// Breaker guards a Sender with a circuit breaker.
type Breaker struct {
	next Sender
	cb   *gobreaker.CircuitBreaker[struct{}]
}

// NewBreaker wraps next. The circuit opens after five consecutive
// failures and probes the relay again after timeout.
func NewBreaker(next Sender, timeout time.Duration) *Breaker {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})
	return &Breaker{next: next, cb: cb}
}

// Send delivers msg unless the circuit is open.
func (b *Breaker) Send(ctx context.Context, msg Message) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.Send(ctx, msg)
	})
	switch {
	case err == nil:
		metrics.MailSendTotal.WithLabelValues("ok").Inc()
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.MailSendTotal.WithLabelValues("rejected").Inc()
		return ErrUnavailable
	default:
		metrics.MailSendTotal.WithLabelValues("error").Inc()
		return err
	}
}

// State reports the breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
