package release

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rubrical-studios/shipver/internal/runner"
)

// Step names one stage of the release sequence
type Step string

const (
	StepResolveVersion Step = "resolve version"
	StepPrepare        Step = "prepare"
	StepPatchArtifacts Step = "patch artifacts"
	StepStageFiles     Step = "stage files"
	StepCommit         Step = "commit"
	StepCreateTag      Step = "create tag"
	StepPushTag        Step = "push tag"
	StepPublish        Step = "publish"
	StepDone           Step = "done"
)

// Prompter supplies the operator's decisions. The orchestrator never reads
// input itself, so a scripted implementation can drive a whole release.
type Prompter interface {
	// KeepVersion asks whether the current version should be released as-is
	KeepVersion(current Version) (bool, error)
	// EnterVersion returns a raw candidate; it is validated by the caller
	// and asked again when invalid
	EnterVersion() (string, error)
	// CommitMessage returns the release commit message; empty means use defaultMessage
	CommitMessage(defaultMessage string) (string, error)
}

// Reporter receives progress output
type Reporter interface {
	Step(title string)
	Success(msg string)
	Info(msg string)
	Warning(msg string)
	Failure(msg string)
	Detail(text string)
	Summary(title string, rows [][2]string)
	NextSteps(steps []string)
}

// Publisher creates a hosted release for a pushed tag
type Publisher interface {
	Publish(ctx context.Context, tag, title, notes string) (string, error)
}

// Options configures one release run
type Options struct {
	// Root is the project root; every command runs there
	Root string
	// VersionFile is the store's path relative to Root, staged with the artifacts
	VersionFile string
	Artifacts   []ArtifactSpec
	// Prepare commands run after the version is resolved and before patching
	Prepare []runner.Command
	// StageExtra lists build manifests staged when present (go.mod, go.sum)
	StageExtra []string
	Remote     string
	TagPrefix  string
	// Push controls both the commit push and the tag push
	Push bool
	// Version, when set, replaces the keep/enter prompts
	Version   string
	DryRun    bool
	NextSteps []string
}

// State is the orchestrator-local record of one run
type State struct {
	Step           Step
	Version        Version
	Previous       Version
	VersionChanged bool
	Patched        []string
	Reports        []FileReport
	HasChanges     bool
	CommitMessage  string
	Tag            string
	ReleaseURL     string
}

// Orchestrator sequences a release: resolve version, prepare, patch
// artifacts, stage, commit if changed, tag, push tag, publish.
// The first failing step ends the run; nothing is rolled back.
type Orchestrator struct {
	Store     VersionStore
	Patcher   *Patcher
	Runner    runner.Runner
	Prompter  Prompter
	Reporter  Reporter
	Publisher Publisher
	Logf      func(format string, args ...any)
	Options   Options
}

// DefaultCommitMessage is used when the operator gives no message
func DefaultCommitMessage(v Version) string {
	return fmt.Sprintf("Release v%s", v)
}

// TagName returns the tag for v under prefix
func TagName(prefix string, v Version) string {
	return prefix + string(v)
}

// Run executes the release sequence. The returned State is always non-nil
// and records how far the run got.
func (o *Orchestrator) Run(ctx context.Context) (*State, error) {
	st := &State{}

	steps := []struct {
		step Step
		fn   func(context.Context, *State) error
	}{
		{StepResolveVersion, o.resolveVersion},
		{StepPrepare, o.prepare},
		{StepPatchArtifacts, o.patchArtifacts},
		{StepStageFiles, o.stageFiles},
		{StepCommit, o.commitIfChanged},
		{StepCreateTag, o.createTag},
		{StepPushTag, o.pushTag},
		{StepPublish, o.publish},
	}
	if o.Options.DryRun {
		steps = steps[:3]
	}

	for _, s := range steps {
		st.Step = s.step
		o.logf("step %s", s.step)
		if err := s.fn(ctx, st); err != nil {
			o.logf("aborted at %s: %v", s.step, err)
			return st, err
		}
	}

	if o.Options.DryRun {
		o.plan(st)
		return st, nil
	}

	st.Step = StepDone
	o.done(st)
	return st, nil
}

// ResolveOnly runs the version and patch steps without touching the repository
func (o *Orchestrator) ResolveOnly(ctx context.Context) (*State, error) {
	st := &State{}
	for _, s := range []struct {
		step Step
		fn   func(context.Context, *State) error
	}{
		{StepResolveVersion, o.resolveVersion},
		{StepPatchArtifacts, o.patchArtifacts},
	} {
		st.Step = s.step
		if err := s.fn(ctx, st); err != nil {
			o.logf("aborted at %s: %v", s.step, err)
			return st, err
		}
	}
	return st, nil
}

func (o *Orchestrator) resolveVersion(_ context.Context, st *State) error {
	current, ok, err := o.Store.Read()
	corrupt := errors.Is(err, ErrInvalidVersionFormat)
	switch {
	case corrupt:
		// an unusable stored value is replaced, never released
		o.logf("stored version unusable: %v", err)
		o.Reporter.Warning(fmt.Sprintf("Ignoring %s: %v", o.versionFileName(), err))
	case err != nil:
		return fmt.Errorf("failed to read stored version: %w", err)
	case ok:
		st.Previous = current
		o.Reporter.Info(fmt.Sprintf("Current version: %s", current))
	}

	var target Version
	switch {
	case o.Options.Version != "":
		target, err = ParseVersion(o.Options.Version)
		if err != nil {
			return err
		}
	case corrupt:
		target, err = o.askVersion()
		if err != nil {
			return err
		}
	case !ok:
		return ErrMissingPersistedVersion
	default:
		keep, err := o.Prompter.KeepVersion(current)
		if err != nil {
			return fmt.Errorf("failed to read answer: %w", err)
		}
		if keep {
			target = current
		} else {
			target, err = o.askVersion()
			if err != nil {
				return err
			}
		}
	}
	st.Version = target

	if ok && target == current {
		o.Reporter.Success(fmt.Sprintf("Using version: %s", target))
		return nil
	}

	if ok && target.IsOlder(current) {
		o.Reporter.Warning(fmt.Sprintf("%s is older than the current version %s", target, current))
	}

	st.VersionChanged = true
	if o.Options.DryRun {
		o.Reporter.Info(fmt.Sprintf("Would update %s: %s", o.versionFileName(), target))
		return nil
	}
	if err := o.Store.Write(target); err != nil {
		return fmt.Errorf("failed to store version: %w", err)
	}
	o.logf("stored version %s (was %q)", target, current)
	o.Reporter.Success(fmt.Sprintf("Updated %s: %s", o.versionFileName(), target))
	return nil
}

// askVersion prompts until a valid version is entered
func (o *Orchestrator) askVersion() (Version, error) {
	for {
		raw, err := o.Prompter.EnterVersion()
		if err != nil {
			return "", fmt.Errorf("failed to read version: %w", err)
		}
		v, err := ParseVersion(raw)
		if err == nil {
			return v, nil
		}
		o.logf("rejected version %q", raw)
		o.Reporter.Warning("Invalid version format. Please use format like 0.8.4")
	}
}

func (o *Orchestrator) prepare(ctx context.Context, _ *State) error {
	for _, c := range o.Options.Prepare {
		if o.Options.DryRun {
			o.Reporter.Info(fmt.Sprintf("Would run: %s", c))
			continue
		}
		if c.Description == "" {
			c.Description = "Running " + c.String()
		}
		if _, err := o.run(ctx, StepPrepare, c); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) patchArtifacts(_ context.Context, st *State) error {
	if len(o.Options.Artifacts) == 0 {
		return nil
	}
	o.Reporter.Step("Updating artifacts")

	reports, err := o.Patcher.ApplyAll(o.Options.Artifacts, st.Version, o.Reporter.Warning)
	st.Reports = reports
	for _, r := range reports {
		if r.Skipped {
			continue
		}
		st.Patched = append(st.Patched, r.Path)
		switch {
		case r.Result == Changed && o.Options.DryRun:
			o.Reporter.Info(fmt.Sprintf("Would update %s: %s", r.Path, st.Version))
		case r.Result == Changed:
			o.logf("patched %s to %s", r.Path, st.Version)
			o.Reporter.Success(fmt.Sprintf("Updated %s: %s", r.Path, st.Version))
		default:
			o.Reporter.Success(fmt.Sprintf("%s already at version: %s", r.Path, st.Version))
		}
	}
	if err != nil {
		o.Reporter.Failure(err.Error())
		return fmt.Errorf("failed to patch artifacts: %w", err)
	}
	return nil
}

func (o *Orchestrator) stageFiles(ctx context.Context, st *State) error {
	paths := []string{}
	seen := map[string]bool{}
	add := func(p string) {
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		paths = append(paths, p)
	}

	add(o.Options.VersionFile)
	for _, p := range st.Patched {
		add(p)
	}
	for _, p := range o.Options.StageExtra {
		if !o.exists(p) {
			o.Reporter.Warning(fmt.Sprintf("%s not found, not staging it", p))
			continue
		}
		add(p)
	}

	_, err := o.run(ctx, StepStageFiles, o.git("Staging files", append([]string{"add", "--"}, paths...)...))
	return err
}

func (o *Orchestrator) commitIfChanged(ctx context.Context, st *State) error {
	check := o.git("Checking for staged changes", "diff", "--cached", "--quiet")
	check.Dir = o.Options.Root
	o.Reporter.Step(check.Description)
	o.logf("%s: %s", StepCommit, check)
	out := o.Runner.Run(ctx, check)
	// exit 0 means the index matches HEAD; anything else is treated as changed
	st.HasChanges = !out.Success
	if !st.HasChanges {
		o.Reporter.Info("No changes to commit (version unchanged)")
		o.Reporter.Success("Skipping commit step")
		return nil
	}

	defaultMsg := DefaultCommitMessage(st.Version)
	msg, err := o.Prompter.CommitMessage(defaultMsg)
	if err != nil {
		return fmt.Errorf("failed to read commit message: %w", err)
	}
	msg = strings.TrimSpace(msg)
	if msg == "" {
		msg = defaultMsg
	}
	st.CommitMessage = msg

	if _, err := o.run(ctx, StepCommit, o.git("Committing changes", "commit", "-m", msg)); err != nil {
		return err
	}
	if !o.Options.Push {
		o.Reporter.Info("Push disabled, not pushing commits")
		return nil
	}
	_, err = o.run(ctx, StepCommit, o.git("Pushing commits to "+o.remote(), "push", o.remote()))
	return err
}

func (o *Orchestrator) createTag(ctx context.Context, st *State) error {
	st.Tag = TagName(o.Options.TagPrefix, st.Version)
	_, err := o.run(ctx, StepCreateTag, o.git("Creating tag "+st.Tag, "tag", "-a", st.Tag, "-m", "Release "+st.Tag))
	return err
}

func (o *Orchestrator) pushTag(ctx context.Context, st *State) error {
	if !o.Options.Push {
		o.Reporter.Info(fmt.Sprintf("Push disabled, tag %s is local only", st.Tag))
		return nil
	}
	_, err := o.run(ctx, StepPushTag, o.git("Pushing tag "+st.Tag, "push", o.remote(), st.Tag))
	return err
}

func (o *Orchestrator) publish(ctx context.Context, st *State) error {
	if o.Publisher == nil {
		return nil
	}
	if !o.Options.Push {
		o.Reporter.Warning("Push disabled, skipping release publish")
		return nil
	}
	o.Reporter.Step("Publishing release " + st.Tag)
	notes := st.CommitMessage
	if notes == "" {
		notes = DefaultCommitMessage(st.Version)
	}
	url, err := o.Publisher.Publish(ctx, st.Tag, "Release "+st.Tag, notes)
	if err != nil {
		o.Reporter.Failure("Publishing release failed")
		return fmt.Errorf("%s: %w", StepPublish, err)
	}
	st.ReleaseURL = url
	o.logf("published %s at %s", st.Tag, url)
	o.Reporter.Success("Release published: " + url)
	return nil
}

func (o *Orchestrator) done(st *State) {
	commit := st.CommitMessage
	if !st.HasChanges {
		commit = "(none, nothing changed)"
	}
	rows := [][2]string{
		{"Version", string(st.Version)},
		{"Tag", st.Tag},
		{"Commit", commit},
	}
	if st.ReleaseURL != "" {
		rows = append(rows, [2]string{"Release", st.ReleaseURL})
	}
	o.Reporter.Summary("Release Complete!", rows)
	o.Reporter.NextSteps(o.Options.NextSteps)
	o.logf("release %s complete", st.Tag)
}

func (o *Orchestrator) plan(st *State) {
	tag := TagName(o.Options.TagPrefix, st.Version)
	o.Reporter.Info("Dry run: no files written, no commands run")
	o.Reporter.Info(fmt.Sprintf("Would stage %s and %d artifact file(s)", o.versionFileName(), len(st.Patched)))
	o.Reporter.Info(fmt.Sprintf("Would commit if staged changes exist: %q", DefaultCommitMessage(st.Version)))
	o.Reporter.Info(fmt.Sprintf("Would create tag: %s", tag))
	if o.Options.Push {
		o.Reporter.Info(fmt.Sprintf("Would push commits and tag to %s", o.remote()))
	}
}

// run executes c in the project root and reports the outcome.
// A failed outcome becomes a *StepError.
func (o *Orchestrator) run(ctx context.Context, step Step, c runner.Command) (runner.Outcome, error) {
	c.Dir = o.Options.Root
	o.Reporter.Step(c.Description)
	o.logf("%s: %s", step, c)

	out := o.Runner.Run(ctx, c)
	if !out.Success {
		o.logf("%s failed (exit %d): %s", step, out.ExitCode, strings.TrimSpace(out.Stderr))
		o.Reporter.Failure(c.Description + " failed")
		if s := strings.TrimSpace(out.Stderr); s != "" {
			o.Reporter.Detail(s)
		}
		return out, &StepError{Step: step, Outcome: out}
	}

	if s := strings.TrimSpace(out.Stdout); s != "" {
		o.Reporter.Detail(s)
	}
	o.Reporter.Success(c.Description + " completed")
	return out, nil
}

func (o *Orchestrator) git(description string, args ...string) runner.Command {
	return runner.Command{Name: "git", Args: args, Description: description}
}

func (o *Orchestrator) remote() string {
	if o.Options.Remote == "" {
		return "origin"
	}
	return o.Options.Remote
}

func (o *Orchestrator) versionFileName() string {
	if o.Options.VersionFile == "" {
		return "VERSION"
	}
	return filepath.Base(o.Options.VersionFile)
}

func (o *Orchestrator) exists(rel string) bool {
	path := rel
	if !filepath.IsAbs(rel) {
		path = filepath.Join(o.Options.Root, rel)
	}
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

func (o *Orchestrator) logf(format string, args ...any) {
	if o.Logf != nil {
		o.Logf(format, args...)
	}
}
