package authenticator

import "net/http"

// Authenticator gates HTTP requests behind identity token verification.
type Authenticator interface {
	Authenticate(h http.Handler) http.Handler
}
