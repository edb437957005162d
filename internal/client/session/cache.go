// Package session persists the client's cooldown state across restarts using
// an embedded Badger store. The cache is a durability convenience only: the
// server's ledger always wins on disagreement.
package session

import (
	"encoding/json"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/upsrj/checkin-system/internal/core/domain"
)

// Cache stores one CooldownState per user email.
type Cache struct {
	db   *badger.DB
	user string
}

// Open opens (or creates) the cache at dir, scoped to user.
func Open(dir, user string) (*Cache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open session cache: %w", err)
	}
	return &Cache{db: db, user: user}, nil
}

// Save persists state for the cache's user.
func (c *Cache) Save(state domain.CooldownState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(c.key(), raw)
	})
}

// Load returns the cached state and whether one was present.
func (c *Cache) Load() (domain.CooldownState, bool, error) {
	var state domain.CooldownState
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(c.key())
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &state)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return domain.CooldownState{}, false, nil
		}
		return domain.CooldownState{}, false, err
	}
	return state, true, nil
}

// Close releases the underlying store.
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) key() []byte {
	return []byte("cooldown:" + c.user)
}
