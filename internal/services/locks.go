// internal/services/locks.go
package services

import (
	"sync"

	"github.com/google/uuid"
)

// AuctionLocks serializes state-changing operations per auction key: every
// bid/claim/processFee call takes the key's mutex for the duration of its
// transaction.
type AuctionLocks struct {
	mtx   sync.Mutex
	locks map[string]*sync.Mutex
}

func NewAuctionLocks() *AuctionLocks {
	return &AuctionLocks{
		locks: make(map[string]*sync.Mutex),
	}
}

func (l *AuctionLocks) get(key string) *sync.Mutex {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	m, exists := l.locks[key]
	if !exists {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	return m
}

// Lock acquires the mutex of one (creator, content) key and returns its
// unlock function.
func (l *AuctionLocks) Lock(creatorID, contentID uuid.UUID) func() {
	m := l.get(creatorID.String() + "/" + contentID.String())
	m.Lock()
	return m.Unlock
}
