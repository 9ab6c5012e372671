package main

import (
	"context"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/shiksha/core"
	"github.com/trezcool/shiksha/core/appstate"
	"github.com/trezcool/shiksha/core/navigation"
	"github.com/trezcool/shiksha/core/user"
	redisstore "github.com/trezcool/shiksha/storage/cache/redis"
	"github.com/trezcool/shiksha/storage/database"
	inmemdb "github.com/trezcool/shiksha/storage/database/inmem"
	sqlxrepos "github.com/trezcool/shiksha/storage/database/sqlx"
)

type stores struct {
	sessions navigation.Repository
	roles    navigation.RoleStore
	appState appstate.Repository
	users    user.Repository

	logger  core.Logger
	closers []io.Closer
}

// openStores connects the backends selected in conf.Storage, each one only once.
func openStores(ctx context.Context, conf *core.Config, logger core.Logger) (*stores, error) {
	st := &stores{logger: logger}
	mem := inmemdb.NewDB()

	var db *sqlx.DB
	postgres := func() (*sqlx.DB, error) {
		if db != nil {
			return db, nil
		}
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}
		var err error
		if db, err = database.Open(conf); err != nil {
			return nil, err
		}
		st.closers = append(st.closers, db)
		if err = database.MigrateUp(db.DB); err != nil {
			return nil, err
		}
		return db, nil
	}

	var rdb *redis.Client
	cache := func() (*redis.Client, error) {
		if rdb != nil {
			return rdb, nil
		}
		var err error
		if rdb, err = redisstore.Open(ctx, conf); err != nil {
			return nil, err
		}
		st.closers = append(st.closers, rdb)
		return rdb, nil
	}

	prefix := conf.Redis.KeyPrefix
	var err error

	switch conf.Storage.Sessions {
	case core.BackendMemory:
		st.sessions = inmemdb.NewSessionRepository(mem)
	case core.BackendPostgres:
		if db, err = postgres(); err == nil {
			st.sessions = sqlxrepos.NewSessionRepository(db)
		}
	default:
		err = unsupported("sessions", conf.Storage.Sessions)
	}
	if err != nil {
		return st.fail(err)
	}

	switch conf.Storage.Roles {
	case core.BackendMemory:
		st.roles = inmemdb.NewRoleStore(mem)
	case core.BackendPostgres:
		if db, err = postgres(); err == nil {
			st.roles = sqlxrepos.NewRoleStore(db)
		}
	case core.BackendRedis:
		if rdb, err = cache(); err == nil {
			st.roles = redisstore.NewRoleStore(rdb, prefix)
		}
	default:
		err = unsupported("roles", conf.Storage.Roles)
	}
	if err != nil {
		return st.fail(err)
	}

	switch conf.Storage.AppState {
	case core.BackendMemory:
		st.appState = inmemdb.NewAppStateRepository(mem)
	case core.BackendRedis:
		if rdb, err = cache(); err == nil {
			st.appState = redisstore.NewAppStateRepository(rdb, prefix)
		}
	default:
		err = unsupported("appState", conf.Storage.AppState)
	}
	if err != nil {
		return st.fail(err)
	}

	switch conf.Storage.Users {
	case core.BackendMemory:
		st.users = inmemdb.NewUserRepository(mem)
	case core.BackendPostgres:
		if db, err = postgres(); err == nil {
			st.users = sqlxrepos.NewUserRepository(db)
		}
	default:
		err = unsupported("users", conf.Storage.Users)
	}
	if err != nil {
		return st.fail(err)
	}
	return st, nil
}

func unsupported(store, backend string) error {
	return errors.Errorf("storage.%s: unsupported backend %q", store, backend)
}

func (st *stores) fail(err error) (*stores, error) {
	st.close()
	return nil, err
}

func (st *stores) close() {
	for i := len(st.closers) - 1; i >= 0; i-- {
		if err := st.closers[i].Close(); err != nil {
			st.logger.Error(fmt.Sprintf("closing storage: %v", err), err)
		}
	}
	st.closers = nil
}
