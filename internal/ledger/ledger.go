// Package ledger persists which mentions have been answered, and the mention
// cursor of each platform, in BadgerDB.
package ledger

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/codegangsta/chartbot/internal/types"
)

// DefaultRetention is how long an answered message id is remembered
const DefaultRetention = 30 * 24 * time.Hour

// Ledger is safe for concurrent use
type Ledger struct {
	db        *badger.DB
	retention time.Duration
}

// Open opens (or creates) a ledger in dir
func Open(dir string, retention time.Duration) (*Ledger, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	return New(db, retention), nil
}

// New wraps an open database
func New(db *badger.DB, retention time.Duration) *Ledger {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Ledger{db: db, retention: retention}
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

func replyKey(platform types.Platform, id string) []byte {
	return []byte("reply:" + string(platform) + ":" + id)
}

func failKey(platform types.Platform, id string) []byte {
	return []byte("fail:" + string(platform) + ":" + id)
}

func cursorKey(platform types.Platform) []byte {
	return []byte("cursor:" + string(platform))
}

// Seen reports whether a message was already answered
func (l *Ledger) Seen(platform types.Platform, id string) (bool, error) {
	err := l.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(replyKey(platform, id))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading ledger: %w", err)
	}
	return true, nil
}

// Mark records a message as answered. The record expires after the retention period.
func (l *Ledger) Mark(platform types.Platform, id string) error {
	stamp := []byte(time.Now().UTC().Format(time.RFC3339))
	err := l.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(replyKey(platform, id), stamp).WithTTL(l.retention))
	})
	if err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}
	return nil
}

// Fail records one more failed reply attempt for a message and returns the
// number of attempts so far. The counter expires after the retention period.
func (l *Ledger) Fail(platform types.Platform, id string) (int, error) {
	attempts := 0
	err := l.db.Update(func(txn *badger.Txn) error {
		key := failKey(platform, id)
		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			err = item.Value(func(val []byte) error {
				n, err := strconv.Atoi(string(val))
				attempts = n
				return err
			})
			if err != nil {
				return err
			}
		}
		attempts++
		return txn.SetEntry(badger.NewEntry(key, []byte(strconv.Itoa(attempts))).WithTTL(l.retention))
	})
	if err != nil {
		return 0, fmt.Errorf("writing attempt count: %w", err)
	}
	return attempts, nil
}

// Cursor returns the newest message id fetched from a platform, or "" if none
func (l *Ledger) Cursor(platform types.Platform) (string, error) {
	var cursor string
	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cursorKey(platform))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			cursor = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading cursor: %w", err)
	}
	return cursor, nil
}

// SetCursor stores the newest message id fetched from a platform
func (l *Ledger) SetCursor(platform types.Platform, id string) error {
	err := l.db.Update(func(txn *badger.Txn) error {
		return txn.Set(cursorKey(platform), []byte(id))
	})
	if err != nil {
		return fmt.Errorf("writing cursor: %w", err)
	}
	return nil
}

// Count returns the number of remembered answered messages for a platform
func (l *Ledger) Count(platform types.Platform) (int, error) {
	n := 0
	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte("reply:" + string(platform) + ":")
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("counting ledger: %w", err)
	}
	return n, nil
}
