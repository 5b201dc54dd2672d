// Package retry provides a bounded retry policy for remote calls.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy describes how many times a failed call is attempted again and how
// long to wait between attempts. The zero value performs a single attempt.
type Policy struct {
	MaxRetries uint64
	Initial    time.Duration
	Max        time.Duration
}

// Do executes fn until it succeeds, the policy is exhausted or the context is
// done. The notify function, when provided, is called after every failed
// attempt that will be retried.
func Do(ctx context.Context, p Policy, fn func() error, notify func(err error, wait time.Duration)) error {
	if p.MaxRetries == 0 {
		return fn()
	}

	eb := backoff.NewExponentialBackOff()
	if p.Initial > 0 {
		eb.InitialInterval = p.Initial
	}
	if p.Max > 0 {
		eb.MaxInterval = p.Max
	}
	eb.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(eb, p.MaxRetries), ctx)

	return backoff.RetryNotify(fn, b, notify)
}

// Permanent marks an error as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
