package locking

import "sync"

// KeyedMutex provides an exclusive critical section per string key. The
// allocation and forfeiture services use it to serialize read-derive-append
// sequences per debtor; different debtors never contend.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKeyedMutex creates an empty keyed mutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *KeyedMutex) lockFor(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	return l
}

// Lock acquires the key's mutex, blocking until available, and returns the
// unlock function.
func (k *KeyedMutex) Lock(key string) func() {
	l := k.lockFor(key)
	l.Lock()
	return l.Unlock
}

// TryLock attempts to acquire the key's mutex without blocking. On success it
// returns the unlock function and true; otherwise nil and false, in which
// case the caller should report contention and let the client retry.
func (k *KeyedMutex) TryLock(key string) (func(), bool) {
	l := k.lockFor(key)
	if !l.TryLock() {
		return nil, false
	}
	return l.Unlock, true
}
