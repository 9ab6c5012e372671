package redisstore

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/shiksha/core/appstate"
)

const appStateKey = "appState"

type appStateRepository struct {
	rdb    redis.Cmdable
	prefix string
}

var _ appstate.Repository = (*appStateRepository)(nil) // interface compliance check

// NewAppStateRepository stores the app state of each session as JSON under "<prefix>:<session>:appState".
func NewAppStateRepository(rdb redis.Cmdable, prefix string) *appStateRepository {
	return &appStateRepository{rdb: rdb, prefix: prefix}
}

func (repo *appStateRepository) GetState(ctx context.Context, sessionID string) (appstate.State, bool, error) {
	data, err := repo.rdb.Get(ctx, key(repo.prefix, sessionID, appStateKey)).Bytes()
	switch {
	case err == redis.Nil:
		return appstate.State{}, false, nil
	case err != nil:
		return appstate.State{}, false, errors.Wrap(err, "getting app state")
	}

	var st appstate.State
	if err = json.Unmarshal(data, &st); err != nil {
		return appstate.State{}, false, errors.Wrap(err, "decoding app state")
	}
	if st.Notifications == nil {
		st.Notifications = []appstate.Notification{}
	}
	return st, true, nil
}

func (repo *appStateRepository) SaveState(ctx context.Context, sessionID string, st appstate.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return errors.Wrap(err, "encoding app state")
	}
	if err = repo.rdb.Set(ctx, key(repo.prefix, sessionID, appStateKey), data, 0).Err(); err != nil {
		return errors.Wrap(err, "setting app state")
	}
	return nil
}

func (repo *appStateRepository) DeleteState(ctx context.Context, sessionID string) error {
	if err := repo.rdb.Del(ctx, key(repo.prefix, sessionID, appStateKey)).Err(); err != nil {
		return errors.Wrap(err, "deleting app state")
	}
	return nil
}
