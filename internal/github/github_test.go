package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchRepositories(t *testing.T) {
	var receivedRequest *http.Request
	server := httptest.NewServer(http.HandlerFunc(
		func(response http.ResponseWriter, request *http.Request) {
			receivedRequest = request
			response.Header().Set("Content-Type", "application/json")
			_, err := response.Write([]byte(`[
				{
					"id": 1,
					"name": "devconnect",
					"full_name": "octocat/devconnect",
					"html_url": "https://github.com/octocat/devconnect",
					"description": "A social network for developers",
					"stargazers_count": 42,
					"forks_count": 7,
					"watchers_count": 42
				}
			]`))
			require.NoError(t, err)
		},
	))
	defer server.Close()

	client := New(server.URL, "service-token", 2*time.Second)

	repos, err := client.FetchRepositories(context.Background(), "octocat")
	require.NoError(t, err)

	require.Len(t, repos, 1)
	assert.Equal(t, "devconnect", repos[0].Name)
	assert.Equal(t, "octocat/devconnect", repos[0].FullName)
	assert.Equal(t, 42, repos[0].Stars)

	require.NotNil(t, receivedRequest)
	assert.Equal(t, "/users/octocat/repos", receivedRequest.URL.Path)
	assert.Equal(t, "5", receivedRequest.URL.Query().Get("per_page"))
	assert.Equal(t, "created", receivedRequest.URL.Query().Get("sort"))
	assert.Equal(t, "asc", receivedRequest.URL.Query().Get("direction"))
	assert.Equal(t, "token service-token", receivedRequest.Header.Get("Authorization"))
}

func TestFetchRepositoriesWithoutToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(response http.ResponseWriter, request *http.Request) {
			assert.Empty(t, request.Header.Get("Authorization"))
			response.Header().Set("Content-Type", "application/json")
			_, _ = response.Write([]byte(`[]`))
		},
	))
	defer server.Close()

	client := New(server.URL, "", 2*time.Second)

	repos, err := client.FetchRepositories(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Empty(t, repos)
}

func TestFetchRepositoriesCollapsesFailuresToNotFound(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "unknown user",
			handler: func(response http.ResponseWriter, request *http.Request) {
				response.WriteHeader(http.StatusNotFound)
			},
		},
		{
			name: "rate limited",
			handler: func(response http.ResponseWriter, request *http.Request) {
				response.WriteHeader(http.StatusForbidden)
			},
		},
		{
			name: "slow upstream",
			handler: func(response http.ResponseWriter, request *http.Request) {
				time.Sleep(200 * time.Millisecond)
				_, _ = response.Write([]byte(`[]`))
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			server := httptest.NewServer(test.handler)
			defer server.Close()

			client := New(server.URL, "", 50*time.Millisecond)

			_, err := client.FetchRepositories(context.Background(), "octocat")
			assert.ErrorIs(t, err, ErrNoGithubProfile)
		})
	}
}
