package stores

import (
	"os"

	"canvas-earth/core"
	"canvas-earth/stores/badger"
	"canvas-earth/stores/memory"
	"canvas-earth/stores/sqlite"

	"github.com/sirupsen/logrus"
)

// Store is a union interface over everything a backend persists: canvas
// objects plus the user directory backing owner references.
type Store interface {
	core.ObjectStore
	core.UserStore
}

// GetStore selects a backend from the STORAGE_TYPE environment variable.
// Unset or unknown values fall back to the in-memory store.
func GetStore() Store {
	storageType := os.Getenv("STORAGE_TYPE")
	var store Store

	storageField := logrus.Fields{
		"storageType": storageType,
	}

	switch storageType {
	case "sqlite":
		dataSourceName := os.Getenv("DATA_SOURCE_NAME")
		if dataSourceName == "" {
			dataSourceName = "canvas.db" // Default filename
		}
		storageField["dataSourceName"] = dataSourceName
		store = sqlite.NewStore(dataSourceName)
	case "badger":
		dataDir := os.Getenv("BADGER_DATA_DIR")
		if dataDir == "" {
			dataDir = "./data/badger" // Default path
		}
		storageField["dataDir"] = dataDir
		store = badger.NewStore(dataDir)
	default:
		store = memory.NewStore()
		storageField["storageType"] = "in-memory"
	}
	logrus.WithFields(storageField).Info("Use storage")
	return store
}
