package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/trezcool/shiksha/core"
	"github.com/trezcool/shiksha/core/navigation"
)

// kvStore keeps small scoped values in the kv_entry table.
type kvStore struct {
	exec core.DBExecutor
}

func (s kvStore) get(ctx context.Context, scope, key string) (string, bool, error) {
	var val string
	err := s.exec.GetContext(ctx, &val, `SELECT value FROM kv_entry WHERE scope = $1 AND key = $2`, scope, key)
	switch {
	case err == sql.ErrNoRows:
		return "", false, nil
	case err != nil:
		return "", false, errors.Wrapf(err, "selecting %s", key)
	}
	return val, true, nil
}

func (s kvStore) set(ctx context.Context, scope, key, val string) error {
	q := `INSERT INTO kv_entry (scope, key, value, updated_at) VALUES ($1, $2, $3, now())
		ON CONFLICT (scope, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	if _, err := s.exec.ExecContext(ctx, q, scope, key, val); err != nil {
		return errors.Wrapf(err, "upserting %s", key)
	}
	return nil
}

func (s kvStore) delete(ctx context.Context, scope, key string) error {
	if _, err := s.exec.ExecContext(ctx, `DELETE FROM kv_entry WHERE scope = $1 AND key = $2`, scope, key); err != nil {
		return errors.Wrapf(err, "deleting %s", key)
	}
	return nil
}

type roleStore struct {
	kv kvStore
}

var _ navigation.RoleStore = (*roleStore)(nil) // interface compliance check

func NewRoleStore(exec core.DBExecutor) *roleStore {
	return &roleStore{kv: kvStore{exec: exec}}
}

func (s roleStore) GetRole(ctx context.Context, scope string) (navigation.Role, error) {
	val, ok, err := s.kv.get(ctx, scope, navigation.RoleKey)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", navigation.ErrNoRole
	}
	return navigation.ParseRole(val)
}

func (s roleStore) SetRole(ctx context.Context, scope string, role navigation.Role) error {
	return s.kv.set(ctx, scope, navigation.RoleKey, role.String())
}

func (s roleStore) DeleteRole(ctx context.Context, scope string) error {
	return s.kv.delete(ctx, scope, navigation.RoleKey)
}
