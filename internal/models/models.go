// Package models contains the typed request and response structures of
// the HTTP API together with their validation tags.
package models

// FieldError is a single validation or domain failure reported to the
// client. Field is empty for failures not tied to a concrete field,
// such as bad credentials.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"msg"`
}

// ErrorsResponse wraps one or more field errors.
type ErrorsResponse struct {
	Errors []FieldError `json:"errors"`
}

// MessageResponse is a plain informational or failure message.
type MessageResponse struct {
	Message string `json:"msg"`
}

// RegisterRequest is the body of POST /api/users.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest is the body of POST /api/auth.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse carries a freshly issued identity token.
type TokenResponse struct {
	Token string `json:"token"`
}

// UpsertProfileRequest is the body of POST /api/profile.
// Skills is a comma-delimited list; it is split and trimmed before
// being stored.
type UpsertProfileRequest struct {
	Status         string `json:"status" validate:"required"`
	Skills         string `json:"skills" validate:"required"`
	Company        string `json:"company"`
	Website        string `json:"website"`
	Location       string `json:"location"`
	Bio            string `json:"bio"`
	GithubUsername string `json:"githubusername"`
	Youtube        string `json:"youtube"`
	Twitter        string `json:"twitter"`
	Facebook       string `json:"facebook"`
	Linkedin       string `json:"linkedin"`
	Instagram      string `json:"instagram"`
}

// AddExperienceRequest is the body of PUT /api/profile/experience.
type AddExperienceRequest struct {
	Title       string `json:"title" validate:"required"`
	Company     string `json:"company" validate:"required"`
	Location    string `json:"location"`
	From        string `json:"from" validate:"required"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

// AddEducationRequest is the body of PUT /api/profile/education.
type AddEducationRequest struct {
	School       string `json:"school" validate:"required"`
	Degree       string `json:"degree" validate:"required"`
	FieldOfStudy string `json:"fieldofstudy" validate:"required"`
	From         string `json:"from" validate:"required"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

// CreatePostRequest is the body of POST /api/posts.
type CreatePostRequest struct {
	Text string `json:"text" validate:"required"`
}

// StatsResponse is the body of GET /api/internal/stats.
type StatsResponse struct {
	Users    int64 `json:"users"`
	Profiles int64 `json:"profiles"`
}
