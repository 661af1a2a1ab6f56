package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/devconnect/internal/models"
)

var testSecretKey = []byte("test-signing-secret")

func TestBuildAndParseTokenString(t *testing.T) {
	theAuth := New(testSecretKey, time.Hour)

	tokenString, err := theAuth.BuildTokenString("user-42")
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	userID, err := theAuth.ParseTokenString(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)
}

func TestParseTokenStringRejectsExpired(t *testing.T) {
	theAuth := New(testSecretKey, -time.Minute)

	tokenString, err := theAuth.BuildTokenString("user-42")
	require.NoError(t, err)

	_, err = theAuth.ParseTokenString(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenStringRejectsWrongSecret(t *testing.T) {
	otherAuth := New([]byte("some-other-secret"), time.Hour)
	tokenString, err := otherAuth.BuildTokenString("user-42")
	require.NoError(t, err)

	theAuth := New(testSecretKey, time.Hour)
	_, err = theAuth.ParseTokenString(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenStringRejectsUnexpectedSigningMethod(t *testing.T) {
	claims := &Claims{UserID: "user-42"}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, *claims)
	tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	theAuth := New(testSecretKey, time.Hour)
	_, err = theAuth.ParseTokenString(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticateMiddleware(t *testing.T) {
	theAuth := New(testSecretKey, time.Hour)

	validToken, err := theAuth.BuildTokenString("user-42")
	require.NoError(t, err)

	expiredToken, err := New(testSecretKey, -time.Minute).BuildTokenString("user-42")
	require.NoError(t, err)

	tests := []struct {
		name            string
		token           string
		expectedCode    int
		expectedMessage string
		expectedUserID  string
	}{
		{
			name:            "missing token",
			token:           "",
			expectedCode:    http.StatusUnauthorized,
			expectedMessage: "No token, authorization denied",
		},
		{
			name:            "malformed token",
			token:           "definitely.not.a-token",
			expectedCode:    http.StatusUnauthorized,
			expectedMessage: "Token is not valid",
		},
		{
			name:            "expired token",
			token:           expiredToken,
			expectedCode:    http.StatusUnauthorized,
			expectedMessage: "Token is not valid",
		},
		{
			name:           "valid token",
			token:          validToken,
			expectedCode:   http.StatusOK,
			expectedUserID: "user-42",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var userIDSeenByHandler string
			handler := theAuth.Authenticate(http.HandlerFunc(
				func(response http.ResponseWriter, request *http.Request) {
					userIDSeenByHandler, _ = UserIDFromContext(request.Context())
					response.WriteHeader(http.StatusOK)
				},
			))

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if test.token != "" {
				request.Header.Set(TokenHeaderName, test.token)
			}
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			assert.Equal(t, test.expectedCode, recorder.Code)
			if test.expectedMessage != "" {
				var body models.MessageResponse
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
				assert.Equal(t, test.expectedMessage, body.Message)
			}
			assert.Equal(t, test.expectedUserID, userIDSeenByHandler)
		})
	}
}
