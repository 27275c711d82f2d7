package core

import (
	"context"
	"time"
)

type (
	User struct {
		ID        string    `json:"id"`
		Login     string    `json:"login"`
		Name      string    `json:"name,omitempty"`
		AvatarURL string    `json:"avatarUrl,omitempty"`
		CreatedAt time.Time `json:"createdAt"`
	}

	// UserStore is the directory backing weak owner references. Resolution is
	// lookup-only; deleting a user never cascades to their objects.
	UserStore interface {
		// GetUser returns the user or a NotFoundError.
		GetUser(ctx context.Context, id string) (*User, error)

		// SaveUser inserts or replaces a directory entry. An empty ID is
		// assigned by the store.
		SaveUser(ctx context.Context, user *User) (*User, error)
	}
)
