package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cli/go-gh/v2/pkg/api"
	"github.com/cli/go-gh/v2/pkg/repository"
)

// ErrNoRepository is returned when no owner/name was resolved for the client
var ErrNoRepository = errors.New("repository not set (configure github.repository)")

// GraphQLClient interface allows mocking the GitHub GraphQL client for testing
type GraphQLClient interface {
	QueryWithContext(ctx context.Context, name string, query interface{}, variables map[string]interface{}) error
}

// RESTClient interface allows mocking the GitHub REST client for testing
type RESTClient interface {
	DoWithContext(ctx context.Context, method string, path string, body io.Reader, response interface{}) error
}

// Client talks to the GitHub API for one repository
type Client struct {
	gql   GraphQLClient
	rest  RESTClient
	owner string
	repo  string
	retry RetryPolicy
}

// ClientOptions configures the API client
type ClientOptions struct {
	// Host is the GitHub hostname (default: github.com)
	Host  string
	Owner string
	Repo  string

	// Retry applies to read-only queries; zero value means DefaultRetryPolicy
	Retry RetryPolicy
}

// RepositoryFromRemote builds client options from a git remote URL such as
// git@github.com:owner/name.git or https://ghe.example.com/owner/name
func RepositoryFromRemote(url string) (ClientOptions, error) {
	r, err := repository.Parse(strings.TrimSpace(url))
	if err != nil {
		return ClientOptions{}, fmt.Errorf("remote %q is not a GitHub repository: %w", strings.TrimSpace(url), err)
	}
	return ClientOptions{Host: r.Host, Owner: r.Owner, Repo: r.Name}, nil
}

// NewClient creates a client authenticated through gh's stored credentials
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.Owner == "" || opts.Repo == "" {
		return nil, ErrNoRepository
	}

	apiOpts := api.ClientOptions{}
	if opts.Host != "" {
		apiOpts.Host = opts.Host
	}

	gql, err := api.NewGraphQLClient(apiOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}
	rest, err := api.NewRESTClient(apiOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}

	c := NewClientWithClients(gql, rest, opts.Owner, opts.Repo)
	if opts.Retry.Attempts > 0 {
		c.retry = opts.Retry
	}
	return c, nil
}

// NewClientWithClients creates a Client with custom transports (for testing)
func NewClientWithClients(gql GraphQLClient, rest RESTClient, owner, repo string) *Client {
	return &Client{gql: gql, rest: rest, owner: owner, repo: repo, retry: DefaultRetryPolicy}
}

// WithRetry replaces the client's retry policy
func (c *Client) WithRetry(p RetryPolicy) *Client {
	c.retry = p
	return c
}

// Repository returns owner/name
func (c *Client) Repository() string {
	return c.owner + "/" + c.repo
}
