// Package service contains the application logic between the HTTP
// handlers and the storage backend: account registration and login,
// profile upsert and sub-record mutation, the account cascade deletion
// and posts.
package service

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/thoas/go-funk"
	"golang.org/x/crypto/bcrypt"

	"github.com/patric-chuzhbe/devconnect/internal/db/storage"
	"github.com/patric-chuzhbe/devconnect/internal/models"
	"github.com/patric-chuzhbe/devconnect/internal/post"
	"github.com/patric-chuzhbe/devconnect/internal/profile"
	"github.com/patric-chuzhbe/devconnect/internal/user"
)

// ErrInvalidCredentials is returned on login with an unknown email or a
// wrong password. The two cases are not distinguished to the caller.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUserAlreadyExists is returned on registration with a taken email.
var ErrUserAlreadyExists = errors.New("user already exists")

// ErrNotFound mirrors the storage sentinel for callers of this package.
var ErrNotFound = storage.ErrNotFound

// ErrNotPostOwner is returned when a user tries to delete a post they do not own.
var ErrNotPostOwner = errors.New("user is not the post owner")

type tokenBuilder interface {
	BuildTokenString(userID string) (string, error)
}

// Service implements the application operations over a storage backend.
type Service struct {
	db           storage.Storage
	tokenBuilder tokenBuilder
}

// New creates a Service over the given storage and token issuer.
func New(db storage.Storage, tokenBuilder tokenBuilder) *Service {
	return &Service{
		db:           db,
		tokenBuilder: tokenBuilder,
	}
}

// Register creates a user account with a bcrypt password hash and a
// gravatar avatar derived from the email, and returns a fresh identity
// token for it.
func (s *Service) Register(ctx context.Context, request *models.RegisterRequest) (string, error) {
	_, err := s.db.GetUserByEmail(ctx, request.Email)
	if err == nil {
		return "", ErrUserAlreadyExists
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return "", err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	userID, err := s.db.CreateUser(
		ctx,
		&user.User{
			Name:         request.Name,
			Email:        request.Email,
			PasswordHash: string(passwordHash),
			Avatar:       gravatarURL(request.Email),
		},
	)
	if err != nil {
		return "", err
	}

	return s.tokenBuilder.BuildTokenString(userID)
}

// Login verifies the credentials and returns a fresh identity token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	usr, err := s.db.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.tokenBuilder.BuildTokenString(usr.ID)
}

// GetCurrentUser returns the user behind the authenticated identity.
func (s *Service) GetCurrentUser(ctx context.Context, userID string) (*user.User, error) {
	return s.db.GetUserByID(ctx, userID)
}

// UpsertProfile normalizes the request into a profile document and
// hands it to the storage backend's atomic insert-or-merge.
func (s *Service) UpsertProfile(
	ctx context.Context,
	userID string,
	request *models.UpsertProfileRequest,
) (*profile.Profile, error) {
	prof := &profile.Profile{
		UserID:         userID,
		Status:         request.Status,
		Skills:         normalizeSkills(request.Skills),
		Company:        request.Company,
		Website:        request.Website,
		Location:       request.Location,
		Bio:            request.Bio,
		GithubUsername: request.GithubUsername,
		Social: profile.SocialLinks{
			Youtube:   request.Youtube,
			Twitter:   request.Twitter,
			Facebook:  request.Facebook,
			Linkedin:  request.Linkedin,
			Instagram: request.Instagram,
		},
	}

	return s.db.UpsertProfile(ctx, prof)
}

// GetProfileByUser returns the profile of the given user with the
// owner's public fields attached.
func (s *Service) GetProfileByUser(ctx context.Context, userID string) (*profile.Profile, error) {
	return s.db.GetProfileByUserID(ctx, userID)
}

// ListProfiles returns every stored profile.
func (s *Service) ListProfiles(ctx context.Context) ([]profile.Profile, error) {
	return s.db.ListProfiles(ctx)
}

// AddExperience prepends a work history entry to the user's profile and
// returns the updated profile.
func (s *Service) AddExperience(
	ctx context.Context,
	userID string,
	request *models.AddExperienceRequest,
) (*profile.Profile, error) {
	prof, err := s.db.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	prof.AddExperience(profile.Experience{
		Title:       request.Title,
		Company:     request.Company,
		Location:    request.Location,
		From:        request.From,
		To:          request.To,
		Current:     request.Current,
		Description: request.Description,
	})

	if err := s.db.SaveProfile(ctx, prof); err != nil {
		return nil, err
	}

	return prof, nil
}

// AddEducation prepends an education entry to the user's profile and
// returns the updated profile.
func (s *Service) AddEducation(
	ctx context.Context,
	userID string,
	request *models.AddEducationRequest,
) (*profile.Profile, error) {
	prof, err := s.db.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	prof.AddEducation(profile.Education{
		School:       request.School,
		Degree:       request.Degree,
		FieldOfStudy: request.FieldOfStudy,
		From:         request.From,
		To:           request.To,
		Current:      request.Current,
		Description:  request.Description,
	})

	if err := s.db.SaveProfile(ctx, prof); err != nil {
		return nil, err
	}

	return prof, nil
}

// RemoveExperience deletes the entry with the given ID from the user's
// profile. An unknown ID leaves the profile unchanged.
func (s *Service) RemoveExperience(ctx context.Context, userID, entryID string) (*profile.Profile, error) {
	prof, err := s.db.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	prof.RemoveExperience(entryID)

	if err := s.db.SaveProfile(ctx, prof); err != nil {
		return nil, err
	}

	return prof, nil
}

// RemoveEducation deletes the entry with the given ID from the user's
// profile. An unknown ID leaves the profile unchanged.
func (s *Service) RemoveEducation(ctx context.Context, userID, entryID string) (*profile.Profile, error) {
	prof, err := s.db.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	prof.RemoveEducation(entryID)

	if err := s.db.SaveProfile(ctx, prof); err != nil {
		return nil, err
	}

	return prof, nil
}

// DeleteAccount removes the user's posts, profile and account record in
// that fixed order, each as a separate storage call. There is no shared
// transaction: a failure partway through stops the cascade and leaves
// the records written so far deleted.
func (s *Service) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.db.DeletePostsByUser(ctx, userID); err != nil {
		return fmt.Errorf("removing the user's posts: %w", err)
	}

	if err := s.db.DeleteProfileByUserID(ctx, userID); err != nil {
		return fmt.Errorf("removing the user's profile: %w", err)
	}

	if err := s.db.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("removing the user: %w", err)
	}

	return nil
}

// CreatePost stores a new post, denormalizing the author's name and
// avatar into it.
func (s *Service) CreatePost(ctx context.Context, userID, text string) (*post.Post, error) {
	usr, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	pst := &post.Post{
		UserID:    userID,
		Text:      text,
		Name:      usr.Name,
		Avatar:    usr.Avatar,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.db.CreatePost(ctx, pst); err != nil {
		return nil, err
	}

	return pst, nil
}

// ListPosts returns every post, newest first.
func (s *Service) ListPosts(ctx context.Context) ([]post.Post, error) {
	return s.db.ListPosts(ctx)
}

// GetPost returns a single post by ID.
func (s *Service) GetPost(ctx context.Context, postID string) (*post.Post, error) {
	return s.db.GetPostByID(ctx, postID)
}

// DeletePost removes a post after verifying the requester owns it.
func (s *Service) DeletePost(ctx context.Context, userID, postID string) error {
	pst, err := s.db.GetPostByID(ctx, postID)
	if err != nil {
		return err
	}

	if pst.UserID != userID {
		return ErrNotPostOwner
	}

	return s.db.DeletePost(ctx, postID)
}

// GetStats returns the aggregate counters for the internal stats endpoint.
func (s *Service) GetStats(ctx context.Context) (*models.StatsResponse, error) {
	numberOfUsers, err := s.db.GetNumberOfUsers(ctx)
	if err != nil {
		return nil, err
	}

	numberOfProfiles, err := s.db.GetNumberOfProfiles(ctx)
	if err != nil {
		return nil, err
	}

	return &models.StatsResponse{
		Users:    numberOfUsers,
		Profiles: numberOfProfiles,
	}, nil
}

// Ping reports storage connectivity.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// normalizeSkills splits the comma-delimited skills value into a
// trimmed ordered sequence, dropping empty items.
func normalizeSkills(skills string) []string {
	trimmed := funk.Map(
		strings.Split(skills, ","),
		strings.TrimSpace,
	).([]string)

	return funk.FilterString(trimmed, func(skill string) bool {
		return skill != ""
	})
}

// gravatarURL derives the avatar URL the same way the public profile
// pages do: size 200, PG rating, identicon-style fallback.
func gravatarURL(email string) string {
	hash := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))

	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?s=200&r=pg&d=mm", hash)
}
