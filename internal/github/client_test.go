package github

import (
	"errors"
	"testing"
)

func TestRepositoryFromRemote(t *testing.T) {
	tests := []struct {
		url       string
		wantHost  string
		wantOwner string
		wantRepo  string
	}{
		{"git@github.com:acme/musicalc.git\n", "github.com", "acme", "musicalc"},
		{"https://github.com/acme/musicalc.git", "github.com", "acme", "musicalc"},
		{"https://ghe.example.com/tools/shipver", "ghe.example.com", "tools", "shipver"},
		{"ssh://git@github.com/acme/musicalc.git", "github.com", "acme", "musicalc"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			opts, err := RepositoryFromRemote(tt.url)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if opts.Host != tt.wantHost || opts.Owner != tt.wantOwner || opts.Repo != tt.wantRepo {
				t.Errorf("Got %+v", opts)
			}
		})
	}
}

func TestRepositoryFromRemote_Invalid(t *testing.T) {
	if _, err := RepositoryFromRemote("not a remote"); err == nil {
		t.Error("Expected error for a non-repository remote")
	}
}

func TestNewClient_RequiresRepository(t *testing.T) {
	_, err := NewClient(ClientOptions{Host: "github.com"})
	if !errors.Is(err, ErrNoRepository) {
		t.Errorf("Expected ErrNoRepository, got %v", err)
	}
}
