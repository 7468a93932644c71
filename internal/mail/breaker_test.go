// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package mail

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

type stubSender struct {
	err   error
	calls int
}

func (s *stubSender) Send(context.Context, Message) error {
	s.calls++
	return s.err
}

func TestBreakerPassesThrough(t *testing.T) {
	stub := &stubSender{}
	b := NewBreaker(stub, time.Minute)

	if err := b.Send(context.Background(), Message{}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if stub.calls != 1 {
		t.Errorf("calls: got %d, want 1", stub.calls)
	}
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	relayErr := errors.New("connection refused")
	stub := &stubSender{err: relayErr}
	b := NewBreaker(stub, time.Minute)

	for i := 0; i < 5; i++ {
		if err := b.Send(context.Background(), Message{}); !errors.Is(err, relayErr) {
			t.Fatalf("attempt %d: got %v, want relay error", i, err)
		}
	}
	if b.State() != gobreaker.StateOpen {
		t.Fatalf("state: got %v, want open", b.State())
	}

	if err := b.Send(context.Background(), Message{}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("open breaker: got %v, want ErrUnavailable", err)
	}
	if stub.calls != 5 {
		t.Errorf("open breaker must not call the relay, calls=%d", stub.calls)
	}
}
