package core

import (
	"context"
	"fmt"
	"time"
)

// ObjectType is the closed set of content kinds a canvas object can hold.
type ObjectType string

const (
	ObjectTypeImage   ObjectType = "IMAGE"
	ObjectTypeVideo   ObjectType = "VIDEO"
	ObjectTypeText    ObjectType = "TEXT"
	ObjectTypeYouTube ObjectType = "YOUTUBE"
)

// ParseObjectType decodes a request string into an ObjectType. Unrecognized
// values fail here, at the boundary, instead of somewhere downstream.
func ParseObjectType(s string) (ObjectType, error) {
	switch ObjectType(s) {
	case ObjectTypeImage, ObjectTypeVideo, ObjectTypeText, ObjectTypeYouTube:
		return ObjectType(s), nil
	}
	return "", &ValidationError{Field: "objectType", Reason: fmt.Sprintf("unknown object type %q", s)}
}

type (
	// CanvasObject is a single positioned item on the shared canvas.
	// ID, ObjectType and CreatedAt are immutable after creation.
	CanvasObject struct {
		ID         string     `json:"id"`
		ObjectType ObjectType `json:"objectType"`
		ContentURL string     `json:"contentUrl,omitempty"`
		PositionX  float64    `json:"positionX"`
		PositionY  float64    `json:"positionY"`
		Width      float64    `json:"width"`
		Height     float64    `json:"height"`
		ZIndex     int        `json:"zIndex"`

		// Text styling, only meaningful for TEXT objects.
		FontSize   int    `json:"fontSize,omitempty"`
		FontWeight string `json:"fontWeight,omitempty"`
		TextColor  string `json:"textColor,omitempty"`

		// OwnerID is a weak reference to a user. Lookup only: objects
		// survive the referenced user going away.
		OwnerID string `json:"ownerId,omitempty"`

		CreatedAt time.Time `json:"createdAt"`
	}

	// ObjectPatch carries the optional per-field values of a partial update.
	// A nil field leaves the stored value unchanged; it never means "clear".
	ObjectPatch struct {
		PositionX  *float64 `json:"positionX,omitempty"`
		PositionY  *float64 `json:"positionY,omitempty"`
		Width      *float64 `json:"width,omitempty"`
		Height     *float64 `json:"height,omitempty"`
		ZIndex     *int     `json:"zIndex,omitempty"`
		ContentURL *string  `json:"contentUrl,omitempty"`
		FontSize   *int     `json:"fontSize,omitempty"`
		FontWeight *string  `json:"fontWeight,omitempty"`
		TextColor  *string  `json:"textColor,omitempty"`
	}

	// Bounds is a viewport rectangle. A nil *Bounds means "everything".
	Bounds struct {
		MinX float64
		MinY float64
		MaxX float64
		MaxY float64
	}

	// ObjectStore is the persistence layer for canvas objects. All operations
	// are atomic per object id; writers to the same id observe a serializable
	// ordering.
	ObjectStore interface {
		// Put inserts or replaces an object. An empty ID is assigned by the
		// store and the stored snapshot is returned.
		Put(ctx context.Context, object *CanvasObject) (*CanvasObject, error)

		// Get returns the object or a NotFoundError.
		Get(ctx context.Context, id string) (*CanvasObject, error)

		// Delete removes the object, NotFoundError if it does not exist.
		Delete(ctx context.Context, id string) error

		// ListAll returns every stored object in no particular order.
		ListAll(ctx context.Context) ([]*CanvasObject, error)
	}
)

// Apply overwrites the fields the patch specifies onto o. Nil patch fields
// are untouched.
func (p *ObjectPatch) Apply(o *CanvasObject) {
	if p.PositionX != nil {
		o.PositionX = *p.PositionX
	}
	if p.PositionY != nil {
		o.PositionY = *p.PositionY
	}
	if p.Width != nil {
		o.Width = *p.Width
	}
	if p.Height != nil {
		o.Height = *p.Height
	}
	if p.ZIndex != nil {
		o.ZIndex = *p.ZIndex
	}
	if p.ContentURL != nil {
		o.ContentURL = *p.ContentURL
	}
	if p.FontSize != nil {
		o.FontSize = *p.FontSize
	}
	if p.FontWeight != nil {
		o.FontWeight = *p.FontWeight
	}
	if p.TextColor != nil {
		o.TextColor = *p.TextColor
	}
}

// Overlaps reports whether the object's bounding box touches or intersects
// the rectangle. Edges count as overlap.
func (b Bounds) Overlaps(o *CanvasObject) bool {
	return o.PositionX+o.Width >= b.MinX &&
		o.PositionX <= b.MaxX &&
		o.PositionY+o.Height >= b.MinY &&
		o.PositionY <= b.MaxY
}

// Clone returns a copy of the object so stored state is never aliased by
// callers.
func (o *CanvasObject) Clone() *CanvasObject {
	c := *o
	return &c
}
