package github

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// RetryPolicy re-runs read-only calls that hit the API rate limit.
// Creating a release never goes through it.
type RetryPolicy struct {
	// Attempts is the total number of calls, including the first
	Attempts int
	// Backoff lists the waits between attempts; the last entry repeats
	Backoff []time.Duration
	// Notify receives a line before each wait (nil: silent)
	Notify io.Writer
}

// DefaultRetryPolicy makes four attempts with exponential backoff
var DefaultRetryPolicy = RetryPolicy{
	Attempts: 4,
	Backoff:  []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
	Notify:   os.Stderr,
}

// Do calls fn until it succeeds, fails with anything but a rate limit, the
// attempts run out, or ctx is done.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil || !IsRateLimited(err) {
			return err
		}
		if i == attempts-1 {
			break
		}

		wait := p.wait(i)
		if p.Notify != nil {
			fmt.Fprintf(p.Notify, "Warning: rate limited, retrying in %v...\n", wait)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return err
}

func (p RetryPolicy) wait(attempt int) time.Duration {
	if len(p.Backoff) == 0 {
		return 0
	}
	if attempt >= len(p.Backoff) {
		return p.Backoff[len(p.Backoff)-1]
	}
	return p.Backoff[attempt]
}
