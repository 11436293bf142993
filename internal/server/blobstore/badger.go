package blobstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/uploadhaven/internal/common"
	"github.com/dmitrijs2005/uploadhaven/internal/filex"
)

// valueLogFileSize must exceed the largest blob accepted by the server.
const valueLogFileSize = 512 << 20

// BadgerStore keeps blobs in an embedded badger database, for single-node
// deployments without object storage.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) a database in dir. An empty dir runs
// badger fully in memory.
func NewBadgerStore(dir string) (*BadgerStore, error) {
	if dir != "" {
		abs, err := filex.EnsureDir(dir)
		if err != nil {
			return nil, err
		}
		dir = abs
	}
	opts := badger.DefaultOptions(dir).WithValueLogFileSize(valueLogFileSize)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Put(_ context.Context, key string, data []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

func (s *BadgerStore) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BadgerStore) Delete(_ context.Context, key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
