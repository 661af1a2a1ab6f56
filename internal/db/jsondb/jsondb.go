// Package jsondb is a file-backed document store. The whole dataset is
// kept in memory, loaded from a JSON file on start and flushed back on
// Close. It is meant for local development and tests.
package jsondb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/patric-chuzhbe/devconnect/internal/db/storage"
	"github.com/patric-chuzhbe/devconnect/internal/post"
	"github.com/patric-chuzhbe/devconnect/internal/profile"
	"github.com/patric-chuzhbe/devconnect/internal/user"
)

// CacheStruct is the serialized shape of the whole dataset.
// Profiles are keyed by the owning user ID, users and posts by their own IDs.
type CacheStruct struct {
	Users    map[string]*user.User
	Profiles map[string]*profile.Profile
	Posts    map[string]*post.Post
}

// JSONDB is the file-backed storage backend.
type JSONDB struct {
	fileName string
	mu       sync.RWMutex
	Cache    CacheStruct
}

func initDBFile(fileName string) error {
	dbFile, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(dbFile, `{
	"Users": {},
	"Profiles": {},
	"Posts": {}
}`)
	if err != nil {
		return err
	}
	return dbFile.Close()
}

func writeToJSONFile(fileName string, cache interface{}) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %s", err)
	}

	file, err2 := os.OpenFile(fileName, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err2 != nil {
		return fmt.Errorf("error opening file: %s", err2)
	}
	defer file.Close()

	_, err = file.Write(jsonData)
	if err != nil {
		return fmt.Errorf("error writing to file: %s", err)
	}

	return nil
}

func parseJSONFile(fileName string, cacheMap *CacheStruct) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	err = decoder.Decode(cacheMap)
	if err != nil {
		return err
	}

	return nil
}

// New loads the dataset from fileName, creating an empty database file
// when none exists yet.
func New(fileName string) (*JSONDB, error) {
	db := JSONDB{
		fileName: fileName,
		Cache:    CacheStruct{},
	}

	err := parseJSONFile(db.fileName, &db.Cache)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		err := initDBFile(fileName)
		if err != nil {
			return nil, err
		}
		err = parseJSONFile(db.fileName, &db.Cache)
		if err != nil {
			return nil, err
		}
	}

	if db.Cache.Users == nil {
		db.Cache.Users = map[string]*user.User{}
	}
	if db.Cache.Profiles == nil {
		db.Cache.Profiles = map[string]*profile.Profile{}
	}
	if db.Cache.Posts == nil {
		db.Cache.Posts = map[string]*post.Post{}
	}

	return &db, nil
}

// Ping always succeeds for the file backend.
func (db *JSONDB) Ping(ctx context.Context) error {
	return nil
}

// Close flushes the dataset back to the database file.
func (db *JSONDB) Close() error {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return writeToJSONFile(db.fileName, db.Cache)
}

// CreateUser stores a new user, assigning a UUID when the ID is empty.
func (db *JSONDB) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if usr.ID == "" {
		usr.ID = uuid.New().String()
	}
	stored := *usr
	db.Cache.Users[stored.ID] = &stored

	return stored.ID, nil
}

// GetUserByID fetches a user by ID, reporting storage.ErrNotFound when absent.
func (db *JSONDB) GetUserByID(ctx context.Context, userID string) (*user.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	usr, found := db.Cache.Users[userID]
	if !found {
		return nil, storage.ErrNotFound
	}
	result := *usr

	return &result, nil
}

// GetUserByEmail fetches a user by email, reporting storage.ErrNotFound when absent.
func (db *JSONDB) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, usr := range db.Cache.Users {
		if usr.Email == email {
			result := *usr

			return &result, nil
		}
	}

	return nil, storage.ErrNotFound
}

// DeleteUser removes the user record. Missing users are reported as
// storage.ErrNotFound.
func (db *JSONDB) DeleteUser(ctx context.Context, userID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, found := db.Cache.Users[userID]; !found {
		return storage.ErrNotFound
	}
	delete(db.Cache.Users, userID)

	return nil
}

// UpsertProfile creates the profile or merges the supplied top-level
// fields into the stored one under the backend lock, so concurrent
// upserts for the same user cannot interleave.
func (db *JSONDB) UpsertProfile(ctx context.Context, prof *profile.Profile) (*profile.Profile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	existing, found := db.Cache.Profiles[prof.UserID]
	if !found {
		stored := cloneProfile(prof)
		if stored.Skills == nil {
			stored.Skills = []string{}
		}
		stored.Experience = []profile.Experience{}
		stored.Education = []profile.Education{}
		db.Cache.Profiles[stored.UserID] = stored

		return db.attachOwner(cloneProfile(stored)), nil
	}

	mergeProfileFields(existing, prof)

	return db.attachOwner(cloneProfile(existing)), nil
}

// SaveProfile replaces the stored document for the profile's user.
func (db *JSONDB) SaveProfile(ctx context.Context, prof *profile.Profile) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, found := db.Cache.Profiles[prof.UserID]; !found {
		return storage.ErrNotFound
	}
	db.Cache.Profiles[prof.UserID] = cloneProfile(prof)

	return nil
}

// GetProfileByUserID fetches the profile with the owner's public fields
// attached, reporting storage.ErrNotFound when absent.
func (db *JSONDB) GetProfileByUserID(ctx context.Context, userID string) (*profile.Profile, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	prof, found := db.Cache.Profiles[userID]
	if !found {
		return nil, storage.ErrNotFound
	}

	return db.attachOwner(cloneProfile(prof)), nil
}

// ListProfiles returns every profile with owner fields attached.
func (db *JSONDB) ListProfiles(ctx context.Context) ([]profile.Profile, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	result := []profile.Profile{}
	for _, prof := range db.Cache.Profiles {
		result = append(result, *db.attachOwner(cloneProfile(prof)))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UserID < result[j].UserID
	})

	return result, nil
}

// DeleteProfileByUserID removes the profile of the given user.
// A missing profile is not an error: the cascade deletion calls this
// for users that may never have created one.
func (db *JSONDB) DeleteProfileByUserID(ctx context.Context, userID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	delete(db.Cache.Profiles, userID)

	return nil
}

// CreatePost stores a new post, assigning a UUID when the ID is empty.
func (db *JSONDB) CreatePost(ctx context.Context, pst *post.Post) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if pst.ID == "" {
		pst.ID = uuid.New().String()
	}
	stored := *pst
	db.Cache.Posts[stored.ID] = &stored

	return stored.ID, nil
}

// GetPostByID fetches a post by ID, reporting storage.ErrNotFound when absent.
func (db *JSONDB) GetPostByID(ctx context.Context, postID string) (*post.Post, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	pst, found := db.Cache.Posts[postID]
	if !found {
		return nil, storage.ErrNotFound
	}
	result := *pst

	return &result, nil
}

// ListPosts returns every post, newest first.
func (db *JSONDB) ListPosts(ctx context.Context) ([]post.Post, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	result := []post.Post{}
	for _, pst := range db.Cache.Posts {
		result = append(result, *pst)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

// DeletePost removes a post by ID, reporting storage.ErrNotFound when absent.
func (db *JSONDB) DeletePost(ctx context.Context, postID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, found := db.Cache.Posts[postID]; !found {
		return storage.ErrNotFound
	}
	delete(db.Cache.Posts, postID)

	return nil
}

// DeletePostsByUser removes every post owned by the given user.
func (db *JSONDB) DeletePostsByUser(ctx context.Context, userID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for id, pst := range db.Cache.Posts {
		if pst.UserID == userID {
			delete(db.Cache.Posts, id)
		}
	}

	return nil
}

// GetNumberOfUsers returns the total amount of registered users.
func (db *JSONDB) GetNumberOfUsers(ctx context.Context) (int64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return int64(len(db.Cache.Users)), nil
}

// GetNumberOfProfiles returns the total amount of stored profiles.
func (db *JSONDB) GetNumberOfProfiles(ctx context.Context) (int64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return int64(len(db.Cache.Profiles)), nil
}

// attachOwner denormalizes the owning user's public fields into the
// profile. Callers must hold at least the read lock.
func (db *JSONDB) attachOwner(prof *profile.Profile) *profile.Profile {
	if usr, found := db.Cache.Users[prof.UserID]; found {
		prof.User = usr.Public()
	}

	return prof
}

// mergeProfileFields applies the upsert merge semantics: status, skills
// and the social sub-object are always replaced, the optional scalar
// fields only when supplied.
func mergeProfileFields(existing, incoming *profile.Profile) {
	existing.Status = incoming.Status
	existing.Skills = append([]string{}, incoming.Skills...)
	existing.Social = incoming.Social

	if incoming.Company != "" {
		existing.Company = incoming.Company
	}
	if incoming.Website != "" {
		existing.Website = incoming.Website
	}
	if incoming.Location != "" {
		existing.Location = incoming.Location
	}
	if incoming.Bio != "" {
		existing.Bio = incoming.Bio
	}
	if incoming.GithubUsername != "" {
		existing.GithubUsername = incoming.GithubUsername
	}
}

func cloneProfile(prof *profile.Profile) *profile.Profile {
	result := *prof
	result.Skills = append([]string{}, prof.Skills...)
	result.Experience = append([]profile.Experience{}, prof.Experience...)
	result.Education = append([]profile.Education{}, prof.Education...)

	return &result
}
