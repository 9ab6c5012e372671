package core

import "sync"

// KeyedMutex hands out one mutex per key, dropping it once nobody holds or waits on it.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	sync.Mutex
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock blocks until key is free and returns the function releasing it.
func (km *KeyedMutex) Lock(key string) (unlock func()) {
	km.mu.Lock()
	lk, ok := km.locks[key]
	if !ok {
		lk = new(keyedLock)
		km.locks[key] = lk
	}
	lk.refs++
	km.mu.Unlock()

	lk.Lock()
	return func() {
		lk.Unlock()
		km.mu.Lock()
		lk.refs--
		if lk.refs == 0 {
			delete(km.locks, key)
		}
		km.mu.Unlock()
	}
}

// Len is the number of keys currently held or waited on.
func (km *KeyedMutex) Len() int {
	km.mu.Lock()
	defer km.mu.Unlock()
	return len(km.locks)
}
