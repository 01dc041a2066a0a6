package store

import (
	"context"
	"fmt"
	"time"
)

// Dialer opens a connection to a backend.
type Dialer func(ctx context.Context) (Store, error)

// Connect dials until a store is returned, retrying as retryer allows.
// onError, when set, observes every failed attempt before the wait. The wait
// is abandoned when ctx is done.
func Connect(ctx context.Context, dial Dialer, retryer Retryer, onError func(attempt int, err error)) (Store, error) {
	for attempt := 0; ; attempt++ {
		s, err := dial(ctx)
		if err == nil {
			return s, nil
		}
		if onError != nil {
			onError(attempt, err)
		}

		delay, ok := retryer.NextDelay(attempt, err)
		if !ok {
			return nil, fmt.Errorf("giving up after %d attempts: %w", attempt+1, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("connect canceled: %w (last error: %v)", ctx.Err(), err)
		case <-timer.C:
		}
	}
}
