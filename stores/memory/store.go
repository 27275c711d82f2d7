package memory

import (
	"context"
	"sync"

	"canvas-earth/core"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

// memStore implements both ObjectStore and UserStore for in-memory storage.
// All reads return copies so callers never alias stored state.
type memStore struct {
	mu      sync.RWMutex
	objects map[string]*core.CanvasObject
	users   map[string]*core.User
}

// NewStore creates a new in-memory store.
func NewStore() *memStore {
	return &memStore{
		objects: make(map[string]*core.CanvasObject),
		users:   make(map[string]*core.User),
	}
}

// Put inserts or replaces an object. Part of the ObjectStore interface.
func (s *memStore) Put(ctx context.Context, object *core.CanvasObject) (*core.CanvasObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := object.Clone()
	if stored.ID == "" {
		stored.ID = ulid.Make().String()
	}
	s.objects[stored.ID] = stored

	logrus.WithFields(logrus.Fields{
		"object_id":   stored.ID,
		"object_type": stored.ObjectType,
	}).Debug("Object stored")
	return stored.Clone(), nil
}

// Get retrieves an object by its ID. Part of the ObjectStore interface.
func (s *memStore) Get(ctx context.Context, id string) (*core.CanvasObject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if object, ok := s.objects[id]; ok {
		return object.Clone(), nil
	}
	logrus.WithField("object_id", id).Warn("Object with specified ID not found")
	return nil, &core.NotFoundError{Resource: "object", ID: id}
}

// Delete removes an object. Part of the ObjectStore interface.
func (s *memStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[id]; !ok {
		logrus.WithField("object_id", id).Warn("Object not found for deletion")
		return &core.NotFoundError{Resource: "object", ID: id}
	}
	delete(s.objects, id)
	logrus.WithField("object_id", id).Debug("Object deleted")
	return nil
}

// ListAll returns every stored object. Part of the ObjectStore interface.
func (s *memStore) ListAll(ctx context.Context) ([]*core.CanvasObject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	objects := make([]*core.CanvasObject, 0, len(s.objects))
	for _, object := range s.objects {
		objects = append(objects, object.Clone())
	}
	return objects, nil
}

// GetUser looks up a directory entry. Part of the UserStore interface.
func (s *memStore) GetUser(ctx context.Context, id string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if user, ok := s.users[id]; ok {
		u := *user
		return &u, nil
	}
	return nil, &core.NotFoundError{Resource: "user", ID: id}
}

// SaveUser inserts or replaces a directory entry. Part of the UserStore interface.
func (s *memStore) SaveUser(ctx context.Context, user *core.User) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *user
	if stored.ID == "" {
		stored.ID = ulid.Make().String()
	}
	s.users[stored.ID] = &stored

	logrus.WithFields(logrus.Fields{
		"user_id": stored.ID,
		"login":   stored.Login,
	}).Debug("User saved")
	u := stored
	return &u, nil
}
