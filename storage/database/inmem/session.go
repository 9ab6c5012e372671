package inmemdb

import (
	"context"

	"github.com/trezcool/shiksha/core/navigation"
)

type sessionRepository struct {
	db *sessionTable
}

func NewSessionRepository(db *DB) navigation.Repository {
	return &sessionRepository{db: db.session}
}

func (repo *sessionRepository) CreateSession(_ context.Context, sess navigation.Session) (navigation.Session, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table[sess.ID] = sess.Clone()
	return sess, nil
}

func (repo *sessionRepository) GetSession(_ context.Context, id string) (navigation.Session, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if sess, ok := repo.db.table[id]; ok {
		return sess.Clone(), nil
	}
	return navigation.Session{}, navigation.ErrSessionNotFound
}

func (repo *sessionRepository) UpdateSession(_ context.Context, sess navigation.Session) (navigation.Session, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[sess.ID]; !ok {
		return navigation.Session{}, navigation.ErrSessionNotFound
	}
	repo.db.table[sess.ID] = sess.Clone()
	return sess, nil
}

func (repo *sessionRepository) DeleteSession(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.table, id)
	return nil
}
