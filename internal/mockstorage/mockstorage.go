// Package mockstorage provides a testify-based mock implementation
// of the storage interface. It is used for unit testing the service
// layer by simulating storage behavior, including failures.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/devconnect/internal/post"
	"github.com/patric-chuzhbe/devconnect/internal/profile"
	"github.com/patric-chuzhbe/devconnect/internal/user"
)

// StorageMock is a testify mock that implements the storage interface.
type StorageMock struct {
	mock.Mock
}

// CreateUser mocks user creation and returns a generated ID.
func (m *StorageMock) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	args := m.Called(ctx, usr)
	return args.String(0), args.Error(1)
}

// GetUserByID mocks fetching a user by their ID.
func (m *StorageMock) GetUserByID(ctx context.Context, userID string) (*user.User, error) {
	args := m.Called(ctx, userID)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Error(1)
}

// GetUserByEmail mocks fetching a user by their email.
func (m *StorageMock) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Error(1)
}

// DeleteUser mocks removing a user record.
func (m *StorageMock) DeleteUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// UpsertProfile mocks the atomic profile insert-or-merge.
func (m *StorageMock) UpsertProfile(ctx context.Context, prof *profile.Profile) (*profile.Profile, error) {
	args := m.Called(ctx, prof)
	result, _ := args.Get(0).(*profile.Profile)
	return result, args.Error(1)
}

// SaveProfile mocks replacing a stored profile document.
func (m *StorageMock) SaveProfile(ctx context.Context, prof *profile.Profile) error {
	args := m.Called(ctx, prof)
	return args.Error(0)
}

// GetProfileByUserID mocks fetching a profile by the owning user ID.
func (m *StorageMock) GetProfileByUserID(ctx context.Context, userID string) (*profile.Profile, error) {
	args := m.Called(ctx, userID)
	result, _ := args.Get(0).(*profile.Profile)
	return result, args.Error(1)
}

// ListProfiles mocks listing every stored profile.
func (m *StorageMock) ListProfiles(ctx context.Context) ([]profile.Profile, error) {
	args := m.Called(ctx)
	result, _ := args.Get(0).([]profile.Profile)
	return result, args.Error(1)
}

// DeleteProfileByUserID mocks removing the profile of a user.
func (m *StorageMock) DeleteProfileByUserID(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// CreatePost mocks post creation and returns a generated ID.
func (m *StorageMock) CreatePost(ctx context.Context, pst *post.Post) (string, error) {
	args := m.Called(ctx, pst)
	return args.String(0), args.Error(1)
}

// GetPostByID mocks fetching a post by its ID.
func (m *StorageMock) GetPostByID(ctx context.Context, postID string) (*post.Post, error) {
	args := m.Called(ctx, postID)
	result, _ := args.Get(0).(*post.Post)
	return result, args.Error(1)
}

// ListPosts mocks listing every post.
func (m *StorageMock) ListPosts(ctx context.Context) ([]post.Post, error) {
	args := m.Called(ctx)
	result, _ := args.Get(0).([]post.Post)
	return result, args.Error(1)
}

// DeletePost mocks removing a post by ID.
func (m *StorageMock) DeletePost(ctx context.Context, postID string) error {
	args := m.Called(ctx, postID)
	return args.Error(0)
}

// DeletePostsByUser mocks removing every post of a user.
func (m *StorageMock) DeletePostsByUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// GetNumberOfUsers mocks the registered users counter.
func (m *StorageMock) GetNumberOfUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// GetNumberOfProfiles mocks the stored profiles counter.
func (m *StorageMock) GetNumberOfProfiles(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Ping mocks the storage health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks closing the storage and releasing resources.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
