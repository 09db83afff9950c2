package services

import "sync"

// userLocks serializes letter generation per user. The database transaction
// is the real guard against quota overdraw; this lock just keeps concurrent
// requests from the same user from racing the provider call.
type userLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[int64]*sync.Mutex)}
}

func (u *userLocks) lock(userID int64) *sync.Mutex {
	u.mu.Lock()
	m, ok := u.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		u.locks[userID] = m
	}
	u.mu.Unlock()

	m.Lock()
	return m
}
