package redisstore

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/shiksha/core/navigation"
)

type roleStore struct {
	rdb    redis.Cmdable
	prefix string
}

var _ navigation.RoleStore = (*roleStore)(nil) // interface compliance check

// NewRoleStore stores the role of each session under "<prefix>:<session>:currentRole".
func NewRoleStore(rdb redis.Cmdable, prefix string) *roleStore {
	return &roleStore{rdb: rdb, prefix: prefix}
}

func (s *roleStore) GetRole(ctx context.Context, scope string) (navigation.Role, error) {
	val, err := s.rdb.Get(ctx, key(s.prefix, scope, navigation.RoleKey)).Result()
	switch {
	case err == redis.Nil:
		return "", navigation.ErrNoRole
	case err != nil:
		return "", errors.Wrap(err, "getting role")
	}
	return navigation.ParseRole(val)
}

func (s *roleStore) SetRole(ctx context.Context, scope string, role navigation.Role) error {
	if err := s.rdb.Set(ctx, key(s.prefix, scope, navigation.RoleKey), role.String(), 0).Err(); err != nil {
		return errors.Wrap(err, "setting role")
	}
	return nil
}

func (s *roleStore) DeleteRole(ctx context.Context, scope string) error {
	if err := s.rdb.Del(ctx, key(s.prefix, scope, navigation.RoleKey)).Err(); err != nil {
		return errors.Wrap(err, "deleting role")
	}
	return nil
}
