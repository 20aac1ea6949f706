// Package retryx is a small retry executor wrapping exponential backoff with
// jitter and a pluggable retry predicate. Every outbound provider call gets
// its own executor instance so one provider's retries never block another's.
package retryx

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
)

// HTTPStatusError carries an upstream HTTP status through the retry predicate.
type HTTPStatusError struct {
	StatusCode int
	Op         string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
}

// Predicate decides whether err on the given attempt (1-based, of attempts
// total) should be retried.
type Predicate func(err error, attempt, attempts int) bool

// Policy configures Do. A zero Attempts means one invocation, no retries.
type Policy struct {
	Attempts    int
	MinDelay    time.Duration
	MaxDelay    time.Duration
	ShouldRetry Predicate // nil means DefaultShouldRetry
}

// DefaultShouldRetry retries upstream statuses 408/409/425/429 and all 5xx,
// plus context timeouts/cancellations and network timeouts.
func DefaultShouldRetry(err error, _, _ int) bool {
	var se *HTTPStatusError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case 408, 409, 425, 429:
			return true
		}
		return se.StatusCode >= 500 && se.StatusCode <= 599
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return false
}

// Do invokes task up to p.Attempts times. Between failed attempts it sleeps
// an exponentially growing, jittered delay starting at MinDelay and capped at
// MaxDelay. A failure the predicate rejects is returned immediately.
func Do(ctx context.Context, p Policy, task func(context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	pred := p.ShouldRetry
	if pred == nil {
		pred = DefaultShouldRetry
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = p.MinDelay
	expo.MaxInterval = p.MaxDelay
	expo.Multiplier = 2.0
	expo.MaxElapsedTime = 0 // attempts bound the loop, not wall time

	attempt := 0
	op := func() error {
		attempt++
		err := task(ctx)
		if err == nil {
			return nil
		}
		if attempt >= attempts || !pred(err, attempt, attempts) {
			return backoff.Permanent(err)
		}
		return err
	}
	return backoff.Retry(op, backoff.WithContext(expo, ctx))
}
