package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rubrical-studios/shipver/internal/config"
	"github.com/rubrical-studios/shipver/internal/github"
	"github.com/rubrical-studios/shipver/internal/logging"
	"github.com/rubrical-studios/shipver/internal/release"
	"github.com/rubrical-studios/shipver/internal/runner"
	"github.com/rubrical-studios/shipver/internal/ui"
	"github.com/spf13/cobra"
)

// Factories replaced by tests
var (
	newRunner = func() runner.Runner {
		return runner.New()
	}
	newPublisher = func(ctx context.Context, p *project) (release.Publisher, error) {
		client, err := p.gitHubClient(ctx)
		if err != nil {
			return nil, err
		}
		return &github.Publisher{Client: client, Draft: p.cfg.GitHub.Draft}, nil
	}
	newReleaseLookup = func(ctx context.Context, p *project) (releaseLookup, error) {
		client, err := p.gitHubClient(ctx)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
)

// project is a loaded project: its root, configuration and run log
type project struct {
	root   string
	cfg    *config.Config
	specs  []release.ArtifactSpec
	logger *logging.Logger
}

// loadProject finds the project from the command's working directory.
// withLog opens the run log when the configuration enables it.
func loadProject(cmd *cobra.Command, withLog bool) (*project, error) {
	dir, err := workingDir(cmd)
	if err != nil {
		return nil, err
	}
	root, cfg, err := config.LoadProject(dir)
	if err != nil {
		return nil, err
	}
	specs, err := cfg.ArtifactSpecs()
	if err != nil {
		return nil, err
	}

	p := &project{root: root, cfg: cfg, specs: specs}
	if withLog && cfg.IsLogEnabled() {
		p.logger, err = logging.New(root)
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *project) close() {
	_ = p.logger.Close()
}

func (p *project) store() *release.FileStore {
	return release.NewFileStore(joinRoot(p.root, p.cfg.GetVersionFile()))
}

// orchestrator wires the release components for this project
func (p *project) orchestrator(u *ui.UI, prompter release.Prompter, opts release.Options) *release.Orchestrator {
	opts.Root = p.root
	opts.VersionFile = p.cfg.GetVersionFile()
	opts.Artifacts = p.specs
	opts.Remote = p.cfg.GetRemote()
	opts.TagPrefix = p.cfg.GetTagPrefix()
	if opts.NextSteps == nil {
		opts.NextSteps = p.cfg.NextSteps
	}

	return &release.Orchestrator{
		Store:    p.store(),
		Patcher:  &release.Patcher{Root: p.root, DryRun: opts.DryRun},
		Runner:   newRunner(),
		Prompter: prompter,
		Reporter: u,
		Logf:     p.logger.Printf,
		Options:  opts,
	}
}

func joinRoot(root, rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(root, rel)
}

// gitHubOptions resolves the repository from github.repository, or else from
// the configured remote's URL as seen from the project root
func (p *project) gitHubOptions(ctx context.Context) (github.ClientOptions, error) {
	if p.cfg.GitHub.Repository != "" {
		owner, repo, err := config.SplitRepository(p.cfg.GitHub.Repository)
		if err != nil {
			return github.ClientOptions{}, err
		}
		return github.ClientOptions{Host: p.cfg.GitHub.Host, Owner: owner, Repo: repo}, nil
	}

	remote := p.cfg.GetRemote()
	out := newRunner().Run(ctx, runner.Command{
		Name: "git",
		Args: []string{"remote", "get-url", remote},
		Dir:  p.root,
	})
	if !out.Success {
		return github.ClientOptions{}, fmt.Errorf("could not read URL of remote %s (set github.repository): %s",
			remote, strings.TrimSpace(out.Stderr))
	}
	opts, err := github.RepositoryFromRemote(out.Stdout)
	if err != nil {
		return github.ClientOptions{}, err
	}
	if p.cfg.GitHub.Host != "" {
		opts.Host = p.cfg.GitHub.Host
	}
	return opts, nil
}

func (p *project) gitHubClient(ctx context.Context) (*github.Client, error) {
	opts, err := p.gitHubOptions(ctx)
	if err != nil {
		return nil, err
	}
	return github.NewClient(opts)
}
