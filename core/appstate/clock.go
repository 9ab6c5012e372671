package appstate

import (
	"context"
	"time"
)

type (
	// Clock lets tests drive the sync delays.
	Clock interface {
		After(d time.Duration) <-chan time.Time
	}

	// SyncFunc performs the actual data sync of a session. Its error sets the sync status to error.
	SyncFunc func(ctx context.Context, sessionID string) error

	realClock struct{}
)

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

func noopSync(context.Context, string) error { return nil }
