// Package router wires the HTTP API: route table, request decoding and
// validation, and the mapping of domain errors onto response statuses.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/devconnect/internal/auth"
	"github.com/patric-chuzhbe/devconnect/internal/authenticator"
	"github.com/patric-chuzhbe/devconnect/internal/github"
	"github.com/patric-chuzhbe/devconnect/internal/gzippedhttp"
	"github.com/patric-chuzhbe/devconnect/internal/ipchecker"
	"github.com/patric-chuzhbe/devconnect/internal/logger"
	"github.com/patric-chuzhbe/devconnect/internal/models"
	"github.com/patric-chuzhbe/devconnect/internal/post"
	"github.com/patric-chuzhbe/devconnect/internal/profile"
	"github.com/patric-chuzhbe/devconnect/internal/service"
	"github.com/patric-chuzhbe/devconnect/internal/user"
)

type accountManager interface {
	Register(ctx context.Context, request *models.RegisterRequest) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	GetCurrentUser(ctx context.Context, userID string) (*user.User, error)
	DeleteAccount(ctx context.Context, userID string) error
}

type profileManager interface {
	UpsertProfile(ctx context.Context, userID string, request *models.UpsertProfileRequest) (*profile.Profile, error)
	GetProfileByUser(ctx context.Context, userID string) (*profile.Profile, error)
	ListProfiles(ctx context.Context) ([]profile.Profile, error)
	AddExperience(ctx context.Context, userID string, request *models.AddExperienceRequest) (*profile.Profile, error)
	AddEducation(ctx context.Context, userID string, request *models.AddEducationRequest) (*profile.Profile, error)
	RemoveExperience(ctx context.Context, userID, entryID string) (*profile.Profile, error)
	RemoveEducation(ctx context.Context, userID, entryID string) (*profile.Profile, error)
}

type postManager interface {
	CreatePost(ctx context.Context, userID, text string) (*post.Post, error)
	ListPosts(ctx context.Context) ([]post.Post, error)
	GetPost(ctx context.Context, postID string) (*post.Post, error)
	DeletePost(ctx context.Context, userID, postID string) error
}

type statsProvider interface {
	GetStats(ctx context.Context) (*models.StatsResponse, error)
	Ping(ctx context.Context) error
}

type appService interface {
	accountManager
	profileManager
	postManager
	statsProvider
}

type repositoryLister interface {
	FetchRepositories(ctx context.Context, username string) ([]github.RepoSummary, error)
}

type handlers struct {
	service   appService
	github    repositoryLister
	ipChecker *ipchecker.IPChecker
	validate  *validator.Validate
}

// New builds the chi mux with the full API route table, the logging and
// gzip middleware, and the auth gate on the protected routes.
func New(
	svc appService,
	githubClient repositoryLister,
	authGate authenticator.Authenticator,
	ipChecker *ipchecker.IPChecker,
) *chi.Mux {
	h := &handlers{
		service:   svc,
		github:    githubClient,
		ipChecker: ipChecker,
		validate:  validator.New(),
	}

	router := chi.NewRouter()
	router.Use(
		logger.WithLoggingHTTPMiddleware,
		gzippedhttp.UngzipRequest,
		gzippedhttp.GzipResponse,
	)

	router.Route("/api", func(api chi.Router) {
		api.Post("/users", h.register)
		api.Post("/auth", h.login)
		api.With(authGate.Authenticate).Get("/auth", h.getCurrentUser)

		api.Route("/profile", func(r chi.Router) {
			r.Get("/", h.listProfiles)
			r.Get("/github/{username}", h.getGithubRepositories)
			r.Get("/{userID}", h.getProfileByUserID)

			r.Group(func(protected chi.Router) {
				protected.Use(authGate.Authenticate)
				protected.Get("/me", h.getOwnProfile)
				protected.Post("/", h.upsertProfile)
				protected.Delete("/", h.deleteAccount)
				protected.Put("/experience", h.addExperience)
				protected.Put("/education", h.addEducation)
				protected.Delete("/experience/{entryID}", h.removeExperience)
				protected.Delete("/education/{entryID}", h.removeEducation)
			})
		})

		api.Route("/posts", func(r chi.Router) {
			r.Use(authGate.Authenticate)
			r.Post("/", h.createPost)
			r.Get("/", h.listPosts)
			r.Get("/{postID}", h.getPost)
			r.Delete("/{postID}", h.deletePost)
		})

		api.Get("/ping", h.ping)
		api.Get("/internal/stats", h.getStats)
	})

	return router
}

func (h *handlers) register(response http.ResponseWriter, request *http.Request) {
	requestBody := &models.RegisterRequest{}
	if !h.decodeAndValidate(response, request, requestBody) {
		return
	}

	token, err := h.service.Register(request.Context(), requestBody)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			writeErrors(response, http.StatusBadRequest, models.FieldError{Message: "User already exists"})

			return
		}
		serverError(response, err)

		return
	}

	writeJSON(response, http.StatusOK, models.TokenResponse{Token: token})
}

func (h *handlers) login(response http.ResponseWriter, request *http.Request) {
	requestBody := &models.LoginRequest{}
	if !h.decodeAndValidate(response, request, requestBody) {
		return
	}

	token, err := h.service.Login(request.Context(), requestBody.Email, requestBody.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeErrors(response, http.StatusBadRequest, models.FieldError{Message: "Invalid credentials"})

			return
		}
		serverError(response, err)

		return
	}

	writeJSON(response, http.StatusOK, models.TokenResponse{Token: token})
}

func (h *handlers) getCurrentUser(response http.ResponseWriter, request *http.Request) {
	userID, ok := auth.UserIDFromContext(request.Context())
	if !ok {
		writeMessage(response, http.StatusUnauthorized, "No token, authorization denied")

		return
	}

	usr, err := h.service.GetCurrentUser(request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeMessage(response, http.StatusNotFound, "User not found")

			return
		}
		serverError(response, err)

		return
	}

	writeJSON(response, http.StatusOK, usr)
}

func (h *handlers) getOwnProfile(response http.ResponseWriter, request *http.Request) {
	userID, _ := auth.UserIDFromContext(request.Context())

	prof, err := h.service.GetProfileByUser(request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeMessage(response, http.StatusBadRequest, "There is no profile for this user")

			return
		}
		serverError(response, err)

		return
	}

	writeJSON(response, http.StatusOK, prof)
}

func (h *handlers) upsertProfile(response http.ResponseWriter, request *http.Request) {
	userID, _ := auth.UserIDFromContext(request.Context())

	requestBody := &models.UpsertProfileRequest{}
	if !h.decodeAndValidate(response, request, requestBody) {
		return
	}

	prof, err := h.service.UpsertProfile(request.Context(), userID, requestBody)
	if err != nil {
		serverError(response, err)

		return
	}

	writeJSON(response, http.StatusCreated, prof)
}

func (h *handlers) listProfiles(response http.ResponseWriter, request *http.Request) {
	profiles, err := h.service.ListProfiles(request.Context())
	if err != nil {
		serverError(response, err)

		return
	}

	writeJSON(response, http.StatusOK, profiles)
}

func (h *handlers) getProfileByUserID(response http.ResponseWriter, request *http.Request) {
	prof, err := h.service.GetProfileByUser(request.Context(), chi.URLParam(request, "userID"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeMessage(response, http.StatusBadRequest, "Profile not found")

			return
		}
		serverError(response, err)

		return
	}

	writeJSON(response, http.StatusOK, prof)
}

func (h *handlers) deleteAccount(response http.ResponseWriter, request *http.Request) {
	userID, _ := auth.UserIDFromContext(request.Context())

	if err := h.service.DeleteAccount(request.Context(), userID); err != nil {
		serverError(response, err)

		return
	}

	writeMessage(response, http.StatusOK, "User deleted")
}

func (h *handlers) addExperience(response http.ResponseWriter, request *http.Request) {
	userID, _ := auth.UserIDFromContext(request.Context())

	requestBody := &models.AddExperienceRequest{}
	if !h.decodeAndValidate(response, request, requestBody) {
		return
	}

	prof, err := h.service.AddExperience(request.Context(), userID, requestBody)
	h.writeProfileMutationResult(response, prof, err)
}

func (h *handlers) addEducation(response http.ResponseWriter, request *http.Request) {
	userID, _ := auth.UserIDFromContext(request.Context())

	requestBody := &models.AddEducationRequest{}
	if !h.decodeAndValidate(response, request, requestBody) {
		return
	}

	prof, err := h.service.AddEducation(request.Context(), userID, requestBody)
	h.writeProfileMutationResult(response, prof, err)
}

func (h *handlers) removeExperience(response http.ResponseWriter, request *http.Request) {
	userID, _ := auth.UserIDFromContext(request.Context())

	prof, err := h.service.RemoveExperience(request.Context(), userID, chi.URLParam(request, "entryID"))
	h.writeProfileMutationResult(response, prof, err)
}

func (h *handlers) removeEducation(response http.ResponseWriter, request *http.Request) {
	userID, _ := auth.UserIDFromContext(request.Context())

	prof, err := h.service.RemoveEducation(request.Context(), userID, chi.URLParam(request, "entryID"))
	h.writeProfileMutationResult(response, prof, err)
}

func (h *handlers) writeProfileMutationResult(
	response http.ResponseWriter,
	prof *profile.Profile,
	err error,
) {
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeMessage(response, http.StatusBadRequest, "There is no profile for this user")

			return
		}
		serverError(response, err)

		return
	}

	writeJSON(response, http.StatusOK, prof)
}

func (h *handlers) getGithubRepositories(response http.ResponseWriter, request *http.Request) {
	repositories, err := h.github.FetchRepositories(request.Context(), chi.URLParam(request, "username"))
	if err != nil {
		if errors.Is(err, github.ErrNoGithubProfile) {
			writeMessage(response, http.StatusNotFound, "No Github profile found")

			return
		}
		serverError(response, err)

		return
	}

	writeJSON(response, http.StatusOK, repositories)
}

func (h *handlers) createPost(response http.ResponseWriter, request *http.Request) {
	userID, _ := auth.UserIDFromContext(request.Context())

	requestBody := &models.CreatePostRequest{}
	if !h.decodeAndValidate(response, request, requestBody) {
		return
	}

	pst, err := h.service.CreatePost(request.Context(), userID, requestBody.Text)
	if err != nil {
		serverError(response, err)

		return
	}

	writeJSON(response, http.StatusCreated, pst)
}

func (h *handlers) listPosts(response http.ResponseWriter, request *http.Request) {
	posts, err := h.service.ListPosts(request.Context())
	if err != nil {
		serverError(response, err)

		return
	}

	writeJSON(response, http.StatusOK, posts)
}

func (h *handlers) getPost(response http.ResponseWriter, request *http.Request) {
	pst, err := h.service.GetPost(request.Context(), chi.URLParam(request, "postID"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeMessage(response, http.StatusNotFound, "Post not found")

			return
		}
		serverError(response, err)

		return
	}

	writeJSON(response, http.StatusOK, pst)
}

func (h *handlers) deletePost(response http.ResponseWriter, request *http.Request) {
	userID, _ := auth.UserIDFromContext(request.Context())

	err := h.service.DeletePost(request.Context(), userID, chi.URLParam(request, "postID"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			writeMessage(response, http.StatusNotFound, "Post not found")
		case errors.Is(err, service.ErrNotPostOwner):
			writeMessage(response, http.StatusUnauthorized, "User not authorized")
		default:
			serverError(response, err)
		}

		return
	}

	writeMessage(response, http.StatusOK, "Post removed")
}

func (h *handlers) ping(response http.ResponseWriter, request *http.Request) {
	if err := h.service.Ping(request.Context()); err != nil {
		serverError(response, err)

		return
	}

	response.WriteHeader(http.StatusOK)
}

func (h *handlers) getStats(response http.ResponseWriter, request *http.Request) {
	if h.ipChecker.IsTrustedSubnetEmpty() {
		response.WriteHeader(http.StatusForbidden)

		return
	}

	clientIP, err := h.ipChecker.GetClientIP(request)
	if err != nil || !h.ipChecker.Check(clientIP) {
		response.WriteHeader(http.StatusForbidden)

		return
	}

	stats, err := h.service.GetStats(request.Context())
	if err != nil {
		serverError(response, err)

		return
	}

	writeJSON(response, http.StatusOK, stats)
}

// decodeAndValidate decodes the JSON request body into target and runs
// struct validation. On failure it writes the per-field error response
// and reports false.
func (h *handlers) decodeAndValidate(
	response http.ResponseWriter,
	request *http.Request,
	target interface{},
) bool {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		writeErrors(response, http.StatusBadRequest, models.FieldError{Message: "Invalid request body"})

		return false
	}

	if err := h.validate.Struct(target); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			serverError(response, err)

			return false
		}

		fieldErrors := make([]models.FieldError, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			fieldErrors = append(fieldErrors, models.FieldError{
				Field:   strings.ToLower(fieldError.Field()),
				Message: validationMessage(fieldError),
			})
		}
		writeErrors(response, http.StatusBadRequest, fieldErrors...)

		return false
	}

	return true
}

func validationMessage(fieldError validator.FieldError) string {
	switch fieldError.Tag() {
	case "email":
		return "Please include a valid email"
	case "min":
		return "Please enter a password with 6 or more characters"
	default:
		return fieldError.Field() + " is required"
	}
}

func writeJSON(response http.ResponseWriter, status int, payload interface{}) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(status)
	if err := json.NewEncoder(response).Encode(payload); err != nil {
		logger.Log.Debugln("Error encoding the response payload: ", zap.Error(err))
	}
}

func writeMessage(response http.ResponseWriter, status int, message string) {
	writeJSON(response, status, models.MessageResponse{Message: message})
}

func writeErrors(response http.ResponseWriter, status int, fieldErrors ...models.FieldError) {
	writeJSON(response, status, models.ErrorsResponse{Errors: fieldErrors})
}

func serverError(response http.ResponseWriter, err error) {
	logger.Log.Errorln("Unexpected error while handling the request: ", zap.Error(err))
	writeMessage(response, http.StatusInternalServerError, "Server error")
}
