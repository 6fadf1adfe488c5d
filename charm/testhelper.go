// ABOUTME: Offline charm clients backed by a local BadgerDB directory
// ABOUTME: Used by tests and by --offline runs that must not reach the charm server

package charm

import (
	"fmt"
	"os"
	"testing"

	"github.com/dgraph-io/badger/v3"
)

// localKV provides charm's kv.KV surface on a plain badger database.
type localKV struct {
	db *badger.DB
}

func (l *localKV) Get(key []byte) ([]byte, error) {
	var result []byte
	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		result, err = item.ValueCopy(nil)
		return err
	})
	return result, err
}

func (l *localKV) Set(key, value []byte) error {
	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (l *localKV) Delete(key []byte) error {
	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (l *localKV) Keys() ([][]byte, error) {
	var keys [][]byte
	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	return keys, err
}

func (l *localKV) Sync() error { return nil }

func (l *localKV) Reset() error { return l.db.DropAll() }

// NewOfflineClient opens a client on dir that never talks to a server.
func NewOfflineClient(dir string) (*Client, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &Client{
		kv:      &localKV{db: db},
		config:  &Config{Host: "localhost", AutoSync: false},
		offline: true,
		closer:  db.Close,
	}, nil
}

// NewTestClient creates an offline client in a temp dir. The cleanup func
// closes the database; the directory is removed by the testing package.
func NewTestClient(t *testing.T) (*Client, func()) {
	t.Helper()

	c, err := NewOfflineClient(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open test client: %v", err)
	}

	cleanup := func() {
		if err := c.Close(); err != nil {
			t.Logf("Warning: failed to close test database: %v", err)
		}
	}
	return c, cleanup
}
