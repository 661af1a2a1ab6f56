// Package storage declares the persistence interface shared by the
// Postgres, file and in-memory backends, together with the sentinel
// errors they report.
package storage

import (
	"context"
	"errors"

	"github.com/patric-chuzhbe/devconnect/internal/post"
	"github.com/patric-chuzhbe/devconnect/internal/profile"
	"github.com/patric-chuzhbe/devconnect/internal/user"
)

// ErrNotFound is returned when no record matches the given key.
var ErrNotFound = errors.New("record not found")

// UserKeeper persists user accounts.
type UserKeeper interface {
	CreateUser(ctx context.Context, usr *user.User) (string, error)

	GetUserByID(ctx context.Context, userID string) (*user.User, error)

	GetUserByEmail(ctx context.Context, email string) (*user.User, error)

	DeleteUser(ctx context.Context, userID string) error
}

// ProfileKeeper persists profile documents.
type ProfileKeeper interface {
	// UpsertProfile atomically creates the profile or merges the
	// supplied top-level fields into the existing one, keyed by
	// Profile.UserID. Experience and education sequences are never
	// touched by the upsert. The stored profile is returned with the
	// owner's public fields denormalized.
	UpsertProfile(ctx context.Context, prof *profile.Profile) (*profile.Profile, error)

	// SaveProfile replaces the whole stored document for
	// Profile.UserID. Used by experience/education mutation.
	SaveProfile(ctx context.Context, prof *profile.Profile) error

	GetProfileByUserID(ctx context.Context, userID string) (*profile.Profile, error)

	ListProfiles(ctx context.Context) ([]profile.Profile, error)

	DeleteProfileByUserID(ctx context.Context, userID string) error
}

// PostKeeper persists posts.
type PostKeeper interface {
	CreatePost(ctx context.Context, pst *post.Post) (string, error)

	GetPostByID(ctx context.Context, postID string) (*post.Post, error)

	ListPosts(ctx context.Context) ([]post.Post, error)

	DeletePost(ctx context.Context, postID string) error

	DeletePostsByUser(ctx context.Context, userID string) error
}

// StatsKeeper reports aggregate counters for the internal stats endpoint.
type StatsKeeper interface {
	GetNumberOfUsers(ctx context.Context) (int64, error)

	GetNumberOfProfiles(ctx context.Context) (int64, error)
}

// Storage is the full persistence surface a backend must provide.
type Storage interface {
	UserKeeper
	ProfileKeeper
	PostKeeper
	StatsKeeper

	Ping(ctx context.Context) error

	Close() error
}
