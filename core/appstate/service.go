package appstate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/shiksha/core"
)

// errSyncAbandoned leaves the state untouched when it was reset or deleted during the sync.
var errSyncAbandoned = errors.New("sync abandoned")

type (
	Repository interface {
		// GetState returns ok = false when nothing was saved for the session yet.
		GetState(ctx context.Context, sessionID string) (st State, ok bool, err error)
		SaveState(ctx context.Context, sessionID string, st State) error
		DeleteState(ctx context.Context, sessionID string) error
	}

	Option func(svc *Service)

	Service struct {
		repo        Repository
		logger      core.Logger
		clock       Clock
		syncFn      SyncFunc
		autoDelay   time.Duration
		manualDelay time.Duration
		online      bool // initial connectivity of a new session

		locks *core.KeyedMutex
		wg    sync.WaitGroup
		ctx   context.Context
		stop  context.CancelFunc
	}
)

func WithClock(clock Clock) Option { return func(svc *Service) { svc.clock = clock } }

func WithSyncFunc(fn SyncFunc) Option { return func(svc *Service) { svc.syncFn = fn } }

func WithSyncDelays(auto, manual time.Duration) Option {
	return func(svc *Service) {
		svc.autoDelay = auto
		svc.manualDelay = manual
	}
}

func NewService(repo Repository, logger core.Logger, opts ...Option) *Service {
	ctx, stop := context.WithCancel(context.Background())
	svc := &Service{
		repo:        repo,
		logger:      logger,
		clock:       realClock{},
		syncFn:      noopSync,
		autoDelay:   2 * time.Second,
		manualDelay: 1500 * time.Millisecond,
		online:      true,
		locks:       core.NewKeyedMutex(),
		ctx:         ctx,
		stop:        stop,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Close abandons the pending syncs and waits for their goroutines.
func (svc *Service) Close() {
	svc.stop()
	svc.wg.Wait()
}

func (svc *Service) Get(ctx context.Context, sessionID string) (State, error) {
	return svc.load(ctx, sessionID)
}

// SetOnline records connectivity. Coming online while idle starts an automatic sync.
func (svc *Service) SetOnline(ctx context.Context, sessionID string, online bool) (State, error) {
	var startSync bool
	st, err := svc.update(ctx, sessionID, func(st *State) error {
		startSync = online && !st.Online && st.SyncStatus == SyncIdle
		st.Online = online
		if startSync {
			st.SyncStatus = SyncSyncing
		}
		return nil
	})
	if err == nil && startSync {
		svc.scheduleSync(sessionID, svc.autoDelay)
	}
	return st, err
}

// Sync starts a manual sync. It is a no-op while offline or while a sync is running.
func (svc *Service) Sync(ctx context.Context, sessionID string) (State, error) {
	var started bool
	st, err := svc.update(ctx, sessionID, func(st *State) error {
		if !st.Online || st.SyncStatus == SyncSyncing {
			return nil
		}
		st.SyncStatus = SyncSyncing
		started = true
		return nil
	})
	if err == nil && started {
		svc.scheduleSync(sessionID, svc.manualDelay)
	}
	return st, err
}

func (svc *Service) SetLanguage(ctx context.Context, sessionID string, lang Language) (State, error) {
	if lang != LanguageEnglish && lang != LanguageHindi {
		return State{}, ErrUnknownLanguage
	}
	return svc.update(ctx, sessionID, func(st *State) error {
		st.Language = lang
		return nil
	})
}

func (svc *Service) ToggleLanguage(ctx context.Context, sessionID string) (State, error) {
	return svc.update(ctx, sessionID, func(st *State) error {
		st.Language = st.Language.Toggle()
		return nil
	})
}

func (svc *Service) SetLoading(ctx context.Context, sessionID string, loading bool) (State, error) {
	return svc.update(ctx, sessionID, func(st *State) error {
		st.Loading = loading
		return nil
	})
}

// AddNotification puts a new unread notification at the top of the list.
func (svc *Service) AddNotification(ctx context.Context, sessionID string, nn NewNotification) (Notification, error) {
	if !nn.Type.IsValid() {
		return Notification{}, ErrUnknownNotification
	}
	notif := Notification{
		ID:        uuid.NewString(),
		Type:      nn.Type,
		Title:     core.CleanString(nn.Title),
		Message:   core.CleanString(nn.Message),
		Timestamp: core.NowFunc(),
	}
	_, err := svc.update(ctx, sessionID, func(st *State) error {
		st.Notifications = append([]Notification{notif}, st.Notifications...)
		return nil
	})
	if err != nil {
		return Notification{}, err
	}
	return notif, nil
}

func (svc *Service) MarkNotificationRead(ctx context.Context, sessionID, notifID string) (State, error) {
	return svc.update(ctx, sessionID, func(st *State) error {
		for i := range st.Notifications {
			if st.Notifications[i].ID == notifID {
				st.Notifications[i].Read = true
				return nil
			}
		}
		return ErrNotificationNotFound
	})
}

func (svc *Service) UnreadCount(ctx context.Context, sessionID string) (int, error) {
	st, err := svc.load(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return st.UnreadCount(), nil
}

// Reset puts the session back to its initial state, keeping only its connectivity.
// A sync in flight finds the status idle and is dropped.
func (svc *Service) Reset(ctx context.Context, sessionID string) (State, error) {
	return svc.update(ctx, sessionID, func(st *State) error {
		*st = InitialState(st.Online)
		return nil
	})
}

func (svc *Service) Delete(ctx context.Context, sessionID string) error {
	unlock := svc.locks.Lock(sessionID)
	defer unlock()
	return svc.repo.DeleteState(ctx, sessionID)
}

func (svc *Service) load(ctx context.Context, sessionID string) (State, error) {
	st, ok, err := svc.repo.GetState(ctx, sessionID)
	if err != nil {
		return State{}, errors.Wrap(err, "loading app state")
	}
	if !ok {
		return InitialState(svc.online), nil
	}
	return st, nil
}

func (svc *Service) update(ctx context.Context, sessionID string, fn func(st *State) error) (State, error) {
	unlock := svc.locks.Lock(sessionID)
	defer unlock()

	st, err := svc.load(ctx, sessionID)
	if err != nil {
		return State{}, err
	}
	if err = fn(&st); err != nil {
		return State{}, err
	}
	if err = svc.repo.SaveState(ctx, sessionID, st); err != nil {
		return State{}, errors.Wrap(err, "saving app state")
	}
	return st, nil
}

func (svc *Service) scheduleSync(sessionID string, delay time.Duration) {
	svc.wg.Add(1)
	go func() {
		defer svc.wg.Done()

		select {
		case <-svc.ctx.Done():
			return
		case <-svc.clock.After(delay):
		}

		status := SyncSynced
		if err := svc.syncFn(svc.ctx, sessionID); err != nil {
			status = SyncError
			svc.logger.Error(fmt.Sprintf("syncing session %s", sessionID), err)
		}

		_, err := svc.update(svc.ctx, sessionID, func(st *State) error {
			if st.SyncStatus != SyncSyncing {
				return errSyncAbandoned
			}
			now := core.NowFunc()
			st.SyncStatus = status
			if status == SyncSynced {
				st.LastSyncedAt = &now
			}
			return nil
		})
		if err != nil && err != errSyncAbandoned && svc.ctx.Err() == nil {
			svc.logger.Error(fmt.Sprintf("completing sync of session %s", sessionID), err)
		}
	}()
}
