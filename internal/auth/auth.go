// Package auth implements the identity token codec and the HTTP
// authentication gate. Tokens are compact HS256-signed JWTs carrying
// the user identifier and an absolute expiry; requests present them in
// the X-Auth-Token header.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/devconnect/internal/logger"
	"github.com/patric-chuzhbe/devconnect/internal/models"
)

// TokenHeaderName is the request header expected to hold the identity token.
const TokenHeaderName = "X-Auth-Token"

// ErrInvalidToken is returned by ParseTokenString for any verification
// failure: bad signature, malformed token or elapsed expiry. The three
// are deliberately not distinguished to the caller.
var ErrInvalidToken = errors.New("token is not valid")

// Claims represents the JWT claims used by the system.
// It embeds standard JWT claims and adds a user-specific identifier.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// ContextKey is a custom type for storing values in context to avoid collisions.
type ContextKey string

// UserIDKey is the context key used to store and retrieve the authenticated user's ID.
const UserIDKey ContextKey = "userID"

// Auth signs and verifies identity tokens and gates HTTP requests.
// It is stateless apart from the fixed signing secret, so a single
// instance is safe for concurrent use across requests.
type Auth struct {
	tokenSigningSecretKey []byte
	tokenTimeToLive       time.Duration
}

// New creates an Auth with the given signing secret and token lifetime.
func New(tokenSigningSecretKey []byte, tokenTimeToLive time.Duration) *Auth {
	return &Auth{
		tokenSigningSecretKey: tokenSigningSecretKey,
		tokenTimeToLive:       tokenTimeToLive,
	}
}

// BuildTokenString issues a signed token for the given user with an
// expiry computed from the configured lifetime.
func (a *Auth) BuildTokenString(userID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTimeToLive)),
		},
		UserID: userID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, *claims)

	tokenString, err := token.SignedString(a.tokenSigningSecretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseTokenString verifies the signature and expiry of the token and
// returns the embedded user identifier. Any failure is ErrInvalidToken.
func (a *Auth) ParseTokenString(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return a.tokenSigningSecretKey, nil
		},
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	return claims.UserID, nil
}

// Authenticate is an HTTP middleware that rejects requests without a
// valid identity token and stores the authenticated user ID in the
// request context for the downstream handler.
func (a *Auth) Authenticate(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		tokenString := request.Header.Get(TokenHeaderName)
		if tokenString == "" {
			writeUnauthorized(response, "No token, authorization denied")

			return
		}

		userID, err := a.ParseTokenString(tokenString)
		if err != nil {
			logger.Log.Debugln("Error calling the `a.ParseTokenString()`: ", zap.Error(err))
			writeUnauthorized(response, "Token is not valid")

			return
		}

		ctx := context.WithValue(request.Context(), UserIDKey, userID)
		requestWithCtx := request.WithContext(ctx)

		h.ServeHTTP(response, requestWithCtx)
	}

	return http.HandlerFunc(middleware)
}

// UserIDFromContext extracts the authenticated user ID stored by Authenticate.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)

	return userID, ok && userID != ""
}

func writeUnauthorized(response http.ResponseWriter, message string) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(http.StatusUnauthorized)
	if err := json.NewEncoder(response).Encode(models.MessageResponse{Message: message}); err != nil {
		logger.Log.Debugln("Error encoding the unauthorized response: ", zap.Error(err))
	}
}
