package sqlite

import (
	"context"
	"database/sql"
	"log"

	"canvas-earth/core"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

type sqliteStore struct {
	db *sql.DB
}

// NewStore creates a new SQLite-based store.
func NewStore(dataSourceName string) *sqliteStore {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		log.Fatalf("failed to open sqlite database: %v", err)
	}

	objectTableStmt := `
	CREATE TABLE IF NOT EXISTS canvas_objects (
		id TEXT PRIMARY KEY,
		object_type TEXT NOT NULL,
		content_url TEXT,
		position_x REAL NOT NULL,
		position_y REAL NOT NULL,
		width REAL NOT NULL,
		height REAL NOT NULL,
		z_index INTEGER NOT NULL DEFAULT 0,
		font_size INTEGER,
		font_weight TEXT,
		text_color TEXT,
		owner_id TEXT,
		created_at DATETIME NOT NULL
	);`
	if _, err = db.Exec(objectTableStmt); err != nil {
		log.Fatalf("failed to create canvas_objects table: %v", err)
	}

	userTableStmt := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		login TEXT,
		name TEXT,
		avatar_url TEXT,
		created_at DATETIME NOT NULL
	);`
	if _, err = db.Exec(userTableStmt); err != nil {
		log.Fatalf("failed to create users table: %v", err)
	}

	return &sqliteStore{db}
}

// ObjectStore implementation
func (s *sqliteStore) Put(ctx context.Context, object *core.CanvasObject) (*core.CanvasObject, error) {
	stored := object.Clone()
	if stored.ID == "" {
		stored.ID = ulid.Make().String()
	}
	log := logrus.WithFields(logrus.Fields{
		"object_id":   stored.ID,
		"object_type": stored.ObjectType,
	})

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO canvas_objects
			(id, object_type, content_url, position_x, position_y, width, height, z_index, font_size, font_weight, text_color, owner_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content_url = excluded.content_url,
			position_x = excluded.position_x,
			position_y = excluded.position_y,
			width = excluded.width,
			height = excluded.height,
			z_index = excluded.z_index,
			font_size = excluded.font_size,
			font_weight = excluded.font_weight,
			text_color = excluded.text_color,
			owner_id = excluded.owner_id`,
		stored.ID, string(stored.ObjectType), stored.ContentURL,
		stored.PositionX, stored.PositionY, stored.Width, stored.Height,
		stored.ZIndex, stored.FontSize, stored.FontWeight, stored.TextColor,
		stored.OwnerID, stored.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to store object")
		return nil, &core.StorageError{Op: "put", Err: err}
	}
	log.Debug("Object stored")
	return stored, nil
}

func (s *sqliteStore) Get(ctx context.Context, id string) (*core.CanvasObject, error) {
	log := logrus.WithField("object_id", id)

	row := s.db.QueryRowContext(ctx, `
		SELECT id, object_type, content_url, position_x, position_y, width, height, z_index, font_size, font_weight, text_color, owner_id, created_at
		FROM canvas_objects WHERE id = ?`, id)

	object, err := scanObject(row)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Warn("Object with specified ID not found")
			return nil, &core.NotFoundError{Resource: "object", ID: id}
		}
		log.WithError(err).Error("Failed to retrieve object")
		return nil, &core.StorageError{Op: "get", Err: err}
	}
	return object, nil
}

func (s *sqliteStore) Delete(ctx context.Context, id string) error {
	log := logrus.WithField("object_id", id)

	res, err := s.db.ExecContext(ctx, "DELETE FROM canvas_objects WHERE id = ?", id)
	if err != nil {
		log.WithError(err).Error("Failed to delete object")
		return &core.StorageError{Op: "delete", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &core.StorageError{Op: "delete", Err: err}
	}
	if affected == 0 {
		log.Warn("Object not found for deletion")
		return &core.NotFoundError{Resource: "object", ID: id}
	}
	log.Debug("Object deleted")
	return nil
}

func (s *sqliteStore) ListAll(ctx context.Context) ([]*core.CanvasObject, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, object_type, content_url, position_x, position_y, width, height, z_index, font_size, font_weight, text_color, owner_id, created_at
		FROM canvas_objects`)
	if err != nil {
		return nil, &core.StorageError{Op: "list", Err: err}
	}
	defer rows.Close()

	var objects []*core.CanvasObject
	for rows.Next() {
		object, err := scanObject(rows)
		if err != nil {
			return nil, &core.StorageError{Op: "list", Err: err}
		}
		objects = append(objects, object)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.StorageError{Op: "list", Err: err}
	}
	return objects, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanObject(row rowScanner) (*core.CanvasObject, error) {
	var (
		object     core.CanvasObject
		objectType string
		contentURL sql.NullString
		fontSize   sql.NullInt64
		fontWeight sql.NullString
		textColor  sql.NullString
		ownerID    sql.NullString
	)
	err := row.Scan(&object.ID, &objectType, &contentURL,
		&object.PositionX, &object.PositionY, &object.Width, &object.Height,
		&object.ZIndex, &fontSize, &fontWeight, &textColor, &ownerID,
		&object.CreatedAt)
	if err != nil {
		return nil, err
	}
	object.ObjectType = core.ObjectType(objectType)
	object.ContentURL = contentURL.String
	object.FontSize = int(fontSize.Int64)
	object.FontWeight = fontWeight.String
	object.TextColor = textColor.String
	object.OwnerID = ownerID.String
	return &object, nil
}

// UserStore implementation
func (s *sqliteStore) GetUser(ctx context.Context, id string) (*core.User, error) {
	var user core.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, login, name, avatar_url, created_at FROM users WHERE id = ?", id).
		Scan(&user.ID, &user.Login, &user.Name, &user.AvatarURL, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &core.NotFoundError{Resource: "user", ID: id}
		}
		return nil, &core.StorageError{Op: "get user", Err: err}
	}
	return &user, nil
}

func (s *sqliteStore) SaveUser(ctx context.Context, user *core.User) (*core.User, error) {
	stored := *user
	if stored.ID == "" {
		stored.ID = ulid.Make().String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, login, name, avatar_url, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			login = excluded.login,
			name = excluded.name,
			avatar_url = excluded.avatar_url`,
		stored.ID, stored.Login, stored.Name, stored.AvatarURL, stored.CreatedAt)
	if err != nil {
		logrus.WithError(err).WithField("user_id", stored.ID).Error("Failed to save user")
		return nil, &core.StorageError{Op: "save user", Err: err}
	}
	return &stored, nil
}
