package profile

import (
	"fmt"

	"yourkitchen/internal/config"
	"yourkitchen/internal/database"
	"yourkitchen/internal/domain"
	"yourkitchen/internal/storage"
)

// OpenStore returns the profile backend selected by kind: the JSON file
// under localDir, or the profiles table of db.
func OpenStore(kind, localDir string, db *database.DB) (domain.ProfileStore, error) {
	switch kind {
	case config.StoreLocal:
		return storage.NewLocalStore(localDir)
	case config.StoreSQL:
		if db == nil {
			return nil, fmt.Errorf("profile store %q needs a database", kind)
		}
		return NewSQLStore(db), nil
	}
	return nil, fmt.Errorf("unknown profile store %q", kind)
}
