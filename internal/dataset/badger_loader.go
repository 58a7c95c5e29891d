package dataset

import (
	"bytes"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/kuandriy/vocabtree/internal/descriptor"
	"github.com/kuandriy/vocabtree/internal/logx"
)

// BadgerLoader is an optional on-disk cache in front of a FileLoader: a
// descriptor file already loaded once, in this process or an earlier one
// sharing the same cache directory, is served from badger instead of
// re-parsing the raw matrix from the filesystem. The CLI uses it only in
// the train command (--badger-cache); the search command reads its query
// file directly.
type BadgerLoader struct {
	db   *badger.DB
	next Loader
	log  logx.Logger
}

// OpenBadgerLoader opens (creating if absent) a badger database at dir and
// wraps next with it. A nil logger falls back to logx.Nop.
func OpenBadgerLoader(dir string, next Loader, log logx.Logger) (*BadgerLoader, error) {
	opts := badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("dataset: open badger cache: %w", err)
	}
	if log == nil {
		log = logx.Nop{}
	}
	return &BadgerLoader{db: db, next: next, log: log}, nil
}

// Close releases the underlying badger database.
func (b *BadgerLoader) Close() error {
	return b.db.Close()
}

func badgerKey(absolutePath string) []byte {
	return []byte("descriptor:" + absolutePath)
}

// Load returns the descriptor matrix for absolutePath, consulting badger
// before falling through to next and persisting the result on a miss.
func (b *BadgerLoader) Load(absolutePath string) (descriptor.Matrix, error) {
	key := badgerKey(absolutePath)

	var m descriptor.Matrix
	hit := false
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			decoded, err := descriptor.ReadMatrix(bytes.NewReader(val))
			if err != nil {
				return err
			}
			m = decoded
			hit = true
			return nil
		})
	})
	if err != nil {
		return descriptor.Matrix{}, fmt.Errorf("dataset: badger read: %w", err)
	}
	if hit {
		b.log.Debugf("dataset: badger cache hit for %s", absolutePath)
		return m, nil
	}

	m, err = b.next.Load(absolutePath)
	if err != nil {
		return descriptor.Matrix{}, err
	}

	var buf bytes.Buffer
	if err := descriptor.WriteMatrix(&buf, m); err != nil {
		b.log.Warnf("dataset: failed to encode %s for badger cache: %v", absolutePath, err)
		return m, nil
	}
	if err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, buf.Bytes())
	}); err != nil {
		b.log.Warnf("dataset: failed to persist badger cache entry for %s: %v", absolutePath, err)
	}
	return m, nil
}
