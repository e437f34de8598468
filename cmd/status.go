package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rubrical-studios/shipver/internal/github"
	"github.com/rubrical-studios/shipver/internal/release"
	"github.com/rubrical-studios/shipver/internal/ui"
	"github.com/spf13/cobra"
)

// releaseLookup finds the latest published release
type releaseLookup interface {
	LatestRelease(ctx context.Context) (*github.Release, error)
}

// statusOptions holds the command-line options for status
type statusOptions struct {
	remote bool
	json   bool
}

// Artifact file states
const (
	stateInSync   = "in sync"
	stateDrift    = "drift"
	stateMissing  = "missing"
	stateSkipped  = "missing (optional)"
	stateNoMatch  = "pattern not found"
	stateNoRead   = "unreadable"
	stateNoStored = "no stored version"
)

// StatusOutput is the JSON form of shipver status
type StatusOutput struct {
	Version        string       `json:"version"`
	InvalidVersion string       `json:"invalidVersion,omitempty"`
	Tag            string       `json:"tag,omitempty"`
	Files          []FileStatus `json:"files"`
	LatestRelease  string       `json:"latestRelease,omitempty"`
}

// FileStatus is one artifact file's embedded version
type FileStatus struct {
	Artifact string `json:"artifact"`
	Path     string `json:"path"`
	Version  string `json:"version,omitempty"`
	State    string `json:"state"`
}

func newStatusCommand() *cobra.Command {
	opts := &statusOptions{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the stored version and the version in each artifact",
		Long: `Show the stored version and the version embedded in each configured
artifact file, flagging files that drifted from the stored version.

With --remote, also look up the latest GitHub release of the repository.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.remote, "remote", false, "Compare with the latest GitHub release")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Output in JSON format")

	return cmd
}

func runStatus(cmd *cobra.Command, opts *statusOptions) error {
	p, err := loadProject(cmd, false)
	if err != nil {
		return err
	}

	stored, ok, err := p.store().Read()
	var invalid error
	if errors.Is(err, release.ErrInvalidVersionFormat) {
		invalid = err
	} else if err != nil {
		return err
	}

	out := StatusOutput{Files: inspectArtifacts(p, stored, ok)}
	if invalid != nil {
		out.InvalidVersion = invalid.Error()
	}
	if ok {
		out.Version = string(stored)
		out.Tag = release.TagName(p.cfg.GetTagPrefix(), stored)
	}

	var remoteErr error
	if opts.remote {
		lookup, err := newReleaseLookup(cmd.Context(), p)
		if err != nil {
			return err
		}
		latest, err := lookup.LatestRelease(cmd.Context())
		switch {
		case err == nil:
			out.LatestRelease = latest.TagName
		case github.IsNotFound(err):
		default:
			remoteErr = err
		}
	}

	if opts.json {
		if remoteErr != nil {
			return remoteErr
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
		return checkSync(p, out.Files)
	}

	u := ui.New(cmd.OutOrStdout())
	switch {
	case ok:
		u.Info(fmt.Sprintf("Stored version: %s (%s)", stored, p.cfg.GetVersionFile()))
	case invalid != nil:
		u.Warning(fmt.Sprintf("Stored version is unusable: %v", invalid))
		u.Info("Run 'shipver set <version>' to replace it")
	default:
		u.Warning(fmt.Sprintf("No stored version in %s", p.cfg.GetVersionFile()))
	}

	if len(out.Files) == 0 {
		u.Info("No artifacts configured")
	} else {
		rows := make([][]string, 0, len(out.Files))
		for _, f := range out.Files {
			rows = append(rows, []string{f.Artifact, f.Path, f.Version, f.State})
		}
		u.Table([]string{"ARTIFACT", "FILE", "VERSION", "STATE"}, rows)
	}

	if opts.remote {
		switch {
		case remoteErr != nil:
			return remoteErr
		case out.LatestRelease == "":
			u.Info("No GitHub release published yet")
		default:
			u.Info(fmt.Sprintf("Latest release: %s", out.LatestRelease))
			if ok {
				reportRemoteDrift(u, stored, out.LatestRelease, p.cfg.GetTagPrefix())
			}
		}
	}

	return checkSync(p, out.Files)
}

// checkSync fails when any required artifact disagrees with the stored version
func checkSync(p *project, files []FileStatus) error {
	for _, f := range files {
		switch f.State {
		case stateDrift, stateMissing, stateNoMatch, stateNoRead:
			return fmt.Errorf("artifacts out of sync with %s; run 'shipver set <version>'", p.cfg.GetVersionFile())
		}
	}
	return nil
}

// inspectArtifacts reads the embedded version of every artifact file
func inspectArtifacts(p *project, stored release.Version, ok bool) []FileStatus {
	patcher := &release.Patcher{Root: p.root}
	var files []FileStatus
	for _, spec := range p.specs {
		for _, file := range spec.Files {
			fst := FileStatus{Artifact: spec.Name, Path: file.Path}
			embedded, err := patcher.Inspect(spec, file)
			switch {
			case errors.Is(err, release.ErrFileNotFound) && file.Optional:
				fst.State = stateSkipped
			case errors.Is(err, release.ErrFileNotFound):
				fst.State = stateMissing
			case err != nil && !release.IsPatchFailure(err):
				fst.State = stateNoRead
			case err != nil:
				fst.State = stateNoMatch
			case !ok:
				fst.Version = embedded
				fst.State = stateNoStored
			case embedded == string(stored):
				fst.Version = embedded
				fst.State = stateInSync
			default:
				fst.Version = embedded
				fst.State = stateDrift
			}
			files = append(files, fst)
		}
	}
	return files
}

// reportRemoteDrift compares the stored version with the latest release tag
func reportRemoteDrift(u *ui.UI, stored release.Version, tag, prefix string) {
	published, err := release.ParseVersion(strings.TrimPrefix(tag, prefix))
	if err != nil {
		return
	}
	switch {
	case published == stored:
		u.Success(fmt.Sprintf("%s is released", stored))
	case published.IsOlder(stored):
		u.Info(fmt.Sprintf("%s is not released yet", stored))
	default:
		u.Warning(fmt.Sprintf("Stored version %s is older than the latest release %s", stored, published))
	}
}
