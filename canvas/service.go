package canvas

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"canvas-earth/core"

	"github.com/sirupsen/logrus"
)

type (
	// CreateParams carries everything needed to create a canvas object.
	// Geometry fields are pointers so "absent" is distinguishable from zero
	// and can be rejected.
	CreateParams struct {
		ObjectType core.ObjectType
		ContentURL string
		PositionX  *float64
		PositionY  *float64
		Width      *float64
		Height     *float64
		ZIndex     *int
		OwnerID    string
		FontSize   int
		FontWeight string
		TextColor  string
	}

	// Service orchestrates mutations and viewport queries against the object
	// store, resolves weak owner references, and publishes one change event
	// per committed mutation.
	Service struct {
		objects core.ObjectStore
		users   core.UserStore
		blobs   BlobStore
		events  core.Publisher

		locks idLocks

		// createdAt must be non-decreasing across creations on a single
		// instance, even if the wall clock steps backwards.
		clockMu     sync.Mutex
		lastCreated time.Time
	}

	// BlobStore is the slice of the blob collaborator the upload path needs.
	BlobStore interface {
		Put(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
	}
)

// NewService wires the mutation service. blobs may be nil when uploads are
// not served.
func NewService(objects core.ObjectStore, users core.UserStore, blobs BlobStore, events core.Publisher) *Service {
	return &Service{
		objects: objects,
		users:   users,
		blobs:   blobs,
		events:  events,
		locks:   newIDLocks(),
	}
}

// Get returns the current snapshot of a single object.
func (s *Service) Get(ctx context.Context, id string) (*core.CanvasObject, error) {
	return s.objects.Get(ctx, id)
}

// Viewport returns all objects whose bounding box touches or overlaps the
// rectangle (all objects when bounds is nil), in paint order: zIndex
// ascending, then createdAt ascending. Read-only; reflects the latest
// committed state.
func (s *Service) Viewport(ctx context.Context, bounds *core.Bounds) ([]*core.CanvasObject, error) {
	objects, err := s.objects.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	visible := make([]*core.CanvasObject, 0, len(objects))
	for _, object := range objects {
		if bounds == nil || bounds.Overlaps(object) {
			visible = append(visible, object)
		}
	}

	sort.SliceStable(visible, func(i, j int) bool {
		a, b := visible[i], visible[j]
		if a.ZIndex != b.ZIndex {
			return a.ZIndex < b.ZIndex
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return visible, nil
}

// Create validates the request, resolves the optional owner reference, and
// inserts a new object. The change event is published after the commit, never
// for a failed create.
func (s *Service) Create(ctx context.Context, p CreateParams) (*core.CanvasObject, error) {
	if err := validateCreate(&p); err != nil {
		return nil, err
	}

	ownerID, err := s.resolveOwner(ctx, p.OwnerID)
	if err != nil {
		return nil, err
	}

	zIndex := 0
	if p.ZIndex != nil {
		zIndex = *p.ZIndex
	}

	object := &core.CanvasObject{
		ObjectType: p.ObjectType,
		ContentURL: p.ContentURL,
		PositionX:  *p.PositionX,
		PositionY:  *p.PositionY,
		Width:      *p.Width,
		Height:     *p.Height,
		ZIndex:     zIndex,
		FontSize:   p.FontSize,
		FontWeight: p.FontWeight,
		TextColor:  p.TextColor,
		OwnerID:    ownerID,
		CreatedAt:  s.nextCreatedAt(),
	}

	stored, err := s.objects.Put(ctx, object)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"object_id":   stored.ID,
		"object_type": stored.ObjectType,
	}).Info("Object created")
	s.events.Publish(core.ChangeEvent{Type: core.EventCreate, Object: stored})
	return stored, nil
}

// Update applies a sparse patch to an existing object. Fields absent from
// the patch keep their stored values. Concurrent updates to the same id are
// serialized; whichever commits last wins for the fields it specifies.
func (s *Service) Update(ctx context.Context, id string, patch core.ObjectPatch) (*core.CanvasObject, error) {
	if err := validatePatch(&patch); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(id)
	defer unlock()

	object, err := s.objects.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(object)

	stored, err := s.objects.Put(ctx, object)
	if err != nil {
		return nil, err
	}

	logrus.WithField("object_id", stored.ID).Info("Object updated")
	s.events.Publish(core.ChangeEvent{Type: core.EventUpdate, Object: stored})
	return stored, nil
}

// Delete removes an object for good. The id never becomes valid again for
// this object's history.
func (s *Service) Delete(ctx context.Context, id string) error {
	unlock := s.locks.lock(id)
	defer unlock()

	if err := s.objects.Delete(ctx, id); err != nil {
		return err
	}

	logrus.WithField("object_id", id).Info("Object deleted")
	s.events.Publish(core.ChangeEvent{Type: core.EventDelete, ObjectID: id})
	return nil
}

// resolveOwner looks the owner reference up in the user directory. A missing
// user is not an error: the object is simply created without an owner.
func (s *Service) resolveOwner(ctx context.Context, ownerID string) (string, error) {
	if ownerID == "" {
		return "", nil
	}
	if _, err := s.users.GetUser(ctx, ownerID); err != nil {
		if core.IsNotFound(err) {
			logrus.WithField("owner_id", ownerID).Debug("Owner reference does not resolve, creating without owner")
			return "", nil
		}
		return "", err
	}
	return ownerID, nil
}

func (s *Service) nextCreatedAt() time.Time {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()

	now := time.Now().UTC()
	if now.Before(s.lastCreated) {
		now = s.lastCreated
	}
	s.lastCreated = now
	return now
}
