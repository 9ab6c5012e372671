package inmemdb

import (
	"context"

	"github.com/trezcool/shiksha/core/appstate"
)

type appStateRepository struct {
	db *appStateTable
}

func NewAppStateRepository(db *DB) appstate.Repository {
	return &appStateRepository{db: db.appState}
}

func (repo *appStateRepository) GetState(_ context.Context, sessionID string) (appstate.State, bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	st, ok := repo.db.table[sessionID]
	if !ok {
		return appstate.State{}, false, nil
	}
	return st.Clone(), true, nil
}

func (repo *appStateRepository) SaveState(_ context.Context, sessionID string, st appstate.State) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table[sessionID] = st.Clone()
	return nil
}

func (repo *appStateRepository) DeleteState(_ context.Context, sessionID string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.table, sessionID)
	return nil
}
