// Package github proxies the repository listing of the public GitHub
// API onto the internal API surface.
package github

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/devconnect/internal/logger"
)

// ErrNoGithubProfile is the single outcome for every lookup failure:
// unknown user, transport error, rate limiting or timeout. The caller
// cannot tell them apart; the details go to the server log only.
var ErrNoGithubProfile = errors.New("no Github profile found")

// RepoSummary is the subset of repository fields exposed to clients.
type RepoSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	HTMLURL     string `json:"html_url"`
	Description string `json:"description"`
	Stars       int    `json:"stargazers_count"`
	Forks       int    `json:"forks_count"`
	Watchers    int    `json:"watchers_count"`
}

// Client fetches public repository listings for a username.
type Client struct {
	httpClient *resty.Client
}

// New creates a Client for the given API base URL. The token is
// optional; when set it raises the unauthenticated rate limits.
// requestTimeout bounds every lookup.
func New(apiBaseURL, token string, requestTimeout time.Duration) *Client {
	httpClient := resty.New().
		SetBaseURL(apiBaseURL).
		SetTimeout(requestTimeout).
		SetHeader("Accept", "application/vnd.github.v3+json")

	if token != "" {
		httpClient.SetHeader("Authorization", "token "+token)
	}

	return &Client{
		httpClient: httpClient,
	}
}

// FetchRepositories returns up to five repositories of the given user,
// oldest first. Every failure collapses to ErrNoGithubProfile.
func (c *Client) FetchRepositories(ctx context.Context, username string) ([]RepoSummary, error) {
	var repos []RepoSummary

	response, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("username", username).
		SetQueryParams(map[string]string{
			"per_page":  "5",
			"sort":      "created",
			"direction": "asc",
		}).
		SetResult(&repos).
		Get("/users/{username}/repos")
	if err != nil {
		logger.Log.Debugln("Error calling the `c.httpClient.R().Get()`: ", zap.Error(err))

		return nil, ErrNoGithubProfile
	}

	if response.StatusCode() != 200 {
		logger.Log.Debugln(fmt.Sprintf(
			"Unexpected status %d from the repository listing for %q",
			response.StatusCode(),
			username,
		))

		return nil, ErrNoGithubProfile
	}

	return repos, nil
}
