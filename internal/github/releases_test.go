package github

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
)

// mockGraphQLClient decodes a canned JSON response into the query struct
type mockGraphQLClient struct {
	response  string
	err       error
	calls     int
	variables map[string]interface{}
}

func (m *mockGraphQLClient) QueryWithContext(ctx context.Context, name string, query interface{}, variables map[string]interface{}) error {
	m.calls++
	m.variables = variables
	if m.err != nil {
		return m.err
	}
	return json.Unmarshal([]byte(m.response), query)
}

// mockRESTClient captures requests and decodes a canned response
type mockRESTClient struct {
	response string
	err      error
	method   string
	path     string
	body     map[string]interface{}
	calls    int
}

func (m *mockRESTClient) DoWithContext(ctx context.Context, method string, path string, body io.Reader, response interface{}) error {
	m.calls++
	m.method = method
	m.path = path
	if body != nil {
		data, _ := io.ReadAll(body)
		_ = json.Unmarshal(data, &m.body)
	}
	if m.err != nil {
		return m.err
	}
	return json.Unmarshal([]byte(m.response), response)
}

func TestLatestRelease_ReturnsRelease(t *testing.T) {
	// ARRANGE
	gql := &mockGraphQLClient{response: `{"repository":{"latestRelease":{"tagName":"v0.8.3","name":"Release v0.8.3","url":"https://github.com/acme/musicalc/releases/tag/v0.8.3","isDraft":false,"publishedAt":"2026-01-02T03:04:05Z"}}}`}
	client := NewClientWithClients(gql, nil, "acme", "musicalc")

	// ACT
	rel, err := client.LatestRelease(context.Background())

	// ASSERT
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if rel.TagName != "v0.8.3" {
		t.Errorf("Expected tag v0.8.3, got %s", rel.TagName)
	}
	if rel.URL == "" || rel.PublishedAt.IsZero() {
		t.Errorf("Expected URL and publish time, got %+v", rel)
	}
	if gql.variables["owner"] == nil || gql.variables["name"] == nil {
		t.Errorf("Expected owner and name variables, got %v", gql.variables)
	}
}

func TestLatestRelease_NoReleases(t *testing.T) {
	gql := &mockGraphQLClient{response: `{"repository":{"latestRelease":null}}`}
	client := NewClientWithClients(gql, nil, "acme", "musicalc")

	_, err := client.LatestRelease(context.Background())

	if !IsNotFound(err) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestLatestRelease_QueryError(t *testing.T) {
	gql := &mockGraphQLClient{err: errors.New("boom")}
	client := NewClientWithClients(gql, nil, "acme", "musicalc")

	_, err := client.LatestRelease(context.Background())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %v", err)
	}
	if gql.calls != 1 {
		t.Errorf("Expected no retry for non rate-limit error, got %d calls", gql.calls)
	}
}

func TestLatestRelease_NoClient(t *testing.T) {
	client := NewClientWithClients(nil, nil, "acme", "musicalc")
	if _, err := client.LatestRelease(context.Background()); err == nil {
		t.Error("Expected error without GraphQL client")
	}
}

func TestCreateRelease_PostsRelease(t *testing.T) {
	// ARRANGE
	rest := &mockRESTClient{response: `{"tag_name":"v0.8.4","name":"Release v0.8.4","html_url":"https://github.com/acme/musicalc/releases/tag/v0.8.4","draft":true}`}
	client := NewClientWithClients(nil, rest, "acme", "musicalc")

	// ACT
	rel, err := client.CreateRelease(context.Background(), "v0.8.4", "Release v0.8.4", "notes", true)

	// ASSERT
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if rest.method != "POST" || rest.path != "repos/acme/musicalc/releases" {
		t.Errorf("Unexpected request %s %s", rest.method, rest.path)
	}
	if rest.body["tag_name"] != "v0.8.4" || rest.body["draft"] != true || rest.body["body"] != "notes" {
		t.Errorf("Unexpected body: %v", rest.body)
	}
	if !rel.Draft || rel.URL == "" {
		t.Errorf("Unexpected release: %+v", rel)
	}
}

func TestCreateRelease_NotRetried(t *testing.T) {
	rest := &mockRESTClient{err: ErrRateLimited}
	client := NewClientWithClients(nil, rest, "acme", "musicalc")

	_, err := client.CreateRelease(context.Background(), "v1.0.0", "Release v1.0.0", "", false)

	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("Expected ErrRateLimited, got %v", err)
	}
	if rest.calls != 1 {
		t.Errorf("Expected exactly 1 call, got %d", rest.calls)
	}
}

func TestPublisher_ReturnsURL(t *testing.T) {
	rest := &mockRESTClient{response: `{"html_url":"https://example.test/r/1"}`}
	p := &Publisher{Client: NewClientWithClients(nil, rest, "acme", "musicalc"), Draft: false}

	url, err := p.Publish(context.Background(), "v1.0.0", "Release v1.0.0", "")

	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if url != "https://example.test/r/1" {
		t.Errorf("Unexpected URL %s", url)
	}
	if rest.body["draft"] != false {
		t.Errorf("Expected draft=false, got %v", rest.body["draft"])
	}
}

func TestLatestRelease_RetriesRateLimits(t *testing.T) {
	gql := &flakyGraphQLClient{failures: 2, next: &mockGraphQLClient{response: `{"repository":{"latestRelease":{"tagName":"v1.0.0"}}}`}}
	client := NewClientWithClients(gql, nil, "acme", "musicalc").WithRetry(fastPolicy(3))

	rel, err := client.LatestRelease(context.Background())

	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if rel.TagName != "v1.0.0" || gql.calls != 3 {
		t.Errorf("Expected success on third call, got %+v after %d calls", rel, gql.calls)
	}
}

// flakyGraphQLClient is rate limited for its first failures calls
type flakyGraphQLClient struct {
	failures int
	calls    int
	next     GraphQLClient
}

func (f *flakyGraphQLClient) QueryWithContext(ctx context.Context, name string, query interface{}, variables map[string]interface{}) error {
	f.calls++
	if f.calls <= f.failures {
		return ErrRateLimited
	}
	return f.next.QueryWithContext(ctx, name, query, variables)
}
