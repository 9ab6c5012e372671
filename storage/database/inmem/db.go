package inmemdb

import (
	"sync"

	"github.com/trezcool/shiksha/core/appstate"
	"github.com/trezcool/shiksha/core/navigation"
	"github.com/trezcool/shiksha/core/user"
)

// DB keeps every table in memory. Zero persistence: everything is lost on restart.
type DB struct {
	session  *sessionTable
	kv       *kvTable
	user     *userTable
	appState *appStateTable
}

type (
	sessionTable struct {
		mutex sync.RWMutex
		table map[string]navigation.Session
	}

	kvTable struct {
		mutex sync.RWMutex
		table map[kvKey]string
	}

	kvKey struct {
		scope string
		key   string
	}

	userTable struct {
		mutex sync.RWMutex
		table map[string]*user.User
	}

	appStateTable struct {
		mutex sync.RWMutex
		table map[string]appstate.State
	}
)

func NewDB() *DB {
	return &DB{
		session:  &sessionTable{table: make(map[string]navigation.Session)},
		kv:       &kvTable{table: make(map[kvKey]string)},
		user:     &userTable{table: make(map[string]*user.User)},
		appState: &appStateTable{table: make(map[string]appstate.State)},
	}
}
