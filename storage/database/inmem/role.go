package inmemdb

import (
	"context"

	"github.com/trezcool/shiksha/core/navigation"
)

type roleStore struct {
	db *kvTable
}

func NewRoleStore(db *DB) navigation.RoleStore {
	return &roleStore{db: db.kv}
}

func (s *roleStore) GetRole(_ context.Context, scope string) (navigation.Role, error) {
	s.db.mutex.RLock()
	defer s.db.mutex.RUnlock()

	val, ok := s.db.table[kvKey{scope: scope, key: navigation.RoleKey}]
	if !ok {
		return "", navigation.ErrNoRole
	}
	return navigation.ParseRole(val)
}

func (s *roleStore) SetRole(_ context.Context, scope string, role navigation.Role) error {
	s.db.mutex.Lock()
	defer s.db.mutex.Unlock()

	s.db.table[kvKey{scope: scope, key: navigation.RoleKey}] = role.String()
	return nil
}

func (s *roleStore) DeleteRole(_ context.Context, scope string) error {
	s.db.mutex.Lock()
	defer s.db.mutex.Unlock()

	delete(s.db.table, kvKey{scope: scope, key: navigation.RoleKey})
	return nil
}
