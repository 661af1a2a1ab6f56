// Package user defines the user model used throughout the application,
// particularly for authentication and profile ownership.
package user

// User represents a registered account.
// The password hash is never serialized into API responses.
type User struct {
	// ID is the unique identifier of the user, meaning a UUID.
	ID string `json:"id"`

	Name string `json:"name"`

	// Email is unique across users and is the login identifier.
	Email string `json:"email"`

	PasswordHash string `json:"-"`

	// Avatar is a gravatar URL derived from the email at registration time.
	Avatar string `json:"avatar"`
}

// PublicInfo is the subset of user fields that gets denormalized into
// profiles and posts returned to clients.
type PublicInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// Public returns the denormalized public projection of the user.
func (u *User) Public() PublicInfo {
	return PublicInfo{
		ID:     u.ID,
		Name:   u.Name,
		Avatar: u.Avatar,
	}
}
