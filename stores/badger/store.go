package badger

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"canvas-earth/core"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

const (
	objectPrefix = "object/"
	userPrefix   = "user/"
)

// badgerStore keeps objects and users as JSON records in an embedded Badger
// database. Badger transactions give per-key serializability, which is all
// the object store contract requires.
type badgerStore struct {
	db *badger.DB
}

// NewStore opens (or creates) a Badger database at dataDir.
func NewStore(dataDir string) *badgerStore {
	opts := badger.DefaultOptions(dataDir)
	opts.Logger = nil // Badger's own logger is too chatty for our setup.
	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("failed to open badger database: %v", err)
	}
	return &badgerStore{db: db}
}

// Close releases the underlying database.
func (s *badgerStore) Close() error {
	return s.db.Close()
}

// ObjectStore implementation
func (s *badgerStore) Put(ctx context.Context, object *core.CanvasObject) (*core.CanvasObject, error) {
	stored := object.Clone()
	if stored.ID == "" {
		stored.ID = ulid.Make().String()
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return nil, &core.StorageError{Op: "put", Err: err}
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(objectPrefix+stored.ID), data)
	})
	if err != nil {
		logrus.WithError(err).WithField("object_id", stored.ID).Error("Failed to store object")
		return nil, &core.StorageError{Op: "put", Err: err}
	}
	return stored, nil
}

func (s *badgerStore) Get(ctx context.Context, id string) (*core.CanvasObject, error) {
	var object core.CanvasObject
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(objectPrefix + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &object)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, &core.NotFoundError{Resource: "object", ID: id}
		}
		return nil, &core.StorageError{Op: "get", Err: err}
	}
	return &object, nil
}

func (s *badgerStore) Delete(ctx context.Context, id string) error {
	key := []byte(objectPrefix + id)
	err := s.db.Update(func(txn *badger.Txn) error {
		// Badger deletes are blind writes; check existence first so a
		// missing id reports NotFound.
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return &core.NotFoundError{Resource: "object", ID: id}
		}
		return &core.StorageError{Op: "delete", Err: err}
	}
	return nil
}

func (s *badgerStore) ListAll(ctx context.Context) ([]*core.CanvasObject, error) {
	var objects []*core.CanvasObject
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(objectPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var object core.CanvasObject
				if err := json.Unmarshal(val, &object); err != nil {
					return err
				}
				objects = append(objects, &object)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, &core.StorageError{Op: "list", Err: err}
	}
	return objects, nil
}

// UserStore implementation
func (s *badgerStore) GetUser(ctx context.Context, id string) (*core.User, error) {
	var user core.User
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userPrefix + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, &core.NotFoundError{Resource: "user", ID: id}
		}
		return nil, &core.StorageError{Op: "get user", Err: err}
	}
	return &user, nil
}

func (s *badgerStore) SaveUser(ctx context.Context, user *core.User) (*core.User, error) {
	stored := *user
	if stored.ID == "" {
		stored.ID = ulid.Make().String()
	}
	data, err := json.Marshal(&stored)
	if err != nil {
		return nil, &core.StorageError{Op: "save user", Err: err}
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(userPrefix+stored.ID), data)
	})
	if err != nil {
		return nil, &core.StorageError{Op: "save user", Err: err}
	}
	return &stored, nil
}
