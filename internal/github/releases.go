package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	graphql "github.com/cli/shurcooL-graphql"
)

// Release is a published GitHub release
type Release struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	URL         string    `json:"html_url"`
	Draft       bool      `json:"draft"`
	PublishedAt time.Time `json:"published_at"`
}

// createReleaseRequest is the REST body for POST /repos/{owner}/{repo}/releases
type createReleaseRequest struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	Body    string `json:"body"`
	Draft   bool   `json:"draft"`
}

// LatestRelease returns the repository's latest published release.
// A repository without releases yields ErrNotFound.
func (c *Client) LatestRelease(ctx context.Context) (*Release, error) {
	if c.gql == nil {
		return nil, fmt.Errorf("GraphQL client not initialized - are you authenticated with gh?")
	}

	var query struct {
		Repository struct {
			LatestRelease *struct {
				TagName     string
				Name        string
				URL         string
				IsDraft     bool
				PublishedAt time.Time
			}
		} `graphql:"repository(owner: $owner, name: $name)"`
	}
	variables := map[string]interface{}{
		"owner": graphql.String(c.owner),
		"name":  graphql.String(c.repo),
	}

	err := c.retry.Do(ctx, func() error {
		return c.gql.QueryWithContext(ctx, "LatestRelease", &query, variables)
	})
	if err != nil {
		return nil, WrapError("get latest release", c.Repository(), err)
	}

	latest := query.Repository.LatestRelease
	if latest == nil {
		return nil, WrapError("get latest release", c.Repository(), ErrNotFound)
	}
	return &Release{
		TagName:     latest.TagName,
		Name:        latest.Name,
		URL:         latest.URL,
		Draft:       latest.IsDraft,
		PublishedAt: latest.PublishedAt,
	}, nil
}

// CreateRelease creates a release for an existing, pushed tag
func (c *Client) CreateRelease(ctx context.Context, tag, title, notes string, draft bool) (*Release, error) {
	if c.rest == nil {
		return nil, fmt.Errorf("REST client not initialized - are you authenticated with gh?")
	}

	body, err := json.Marshal(createReleaseRequest{TagName: tag, Name: title, Body: notes, Draft: draft})
	if err != nil {
		return nil, fmt.Errorf("failed to encode release: %w", err)
	}

	var created Release
	path := fmt.Sprintf("repos/%s/%s/releases", c.owner, c.repo)
	if err := c.rest.DoWithContext(ctx, http.MethodPost, path, bytes.NewReader(body), &created); err != nil {
		return nil, WrapError("create release", tag, err)
	}
	return &created, nil
}

// Publisher creates GitHub releases for pushed tags
type Publisher struct {
	Client *Client
	Draft  bool
}

// Publish creates the release and returns its URL
func (p *Publisher) Publish(ctx context.Context, tag, title, notes string) (string, error) {
	rel, err := p.Client.CreateRelease(ctx, tag, title, notes, p.Draft)
	if err != nil {
		return "", err
	}
	return rel.URL, nil
}
