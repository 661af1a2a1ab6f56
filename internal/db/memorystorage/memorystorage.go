// Package memorystorage is the in-memory storage backend. It reuses the
// jsondb document cache without the backing file, so nothing survives a
// restart.
package memorystorage

import (
	"github.com/patric-chuzhbe/devconnect/internal/db/jsondb"
	"github.com/patric-chuzhbe/devconnect/internal/post"
	"github.com/patric-chuzhbe/devconnect/internal/profile"
	"github.com/patric-chuzhbe/devconnect/internal/user"
)

// MemoryStorage keeps the whole dataset in process memory.
type MemoryStorage struct {
	*jsondb.JSONDB
}

// New returns an empty in-memory storage.
func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		JSONDB: &jsondb.JSONDB{
			Cache: jsondb.CacheStruct{
				Users:    map[string]*user.User{},
				Profiles: map[string]*profile.Profile{},
				Posts:    map[string]*post.Post{},
			},
		},
	}, nil
}

// Close is a no-op: there is no backing file to flush.
func (theStorage *MemoryStorage) Close() error {
	return nil
}
