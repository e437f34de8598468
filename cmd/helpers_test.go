package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rubrical-studios/shipver/internal/config"
	"github.com/rubrical-studios/shipver/internal/github"
	"github.com/rubrical-studios/shipver/internal/release"
	"github.com/rubrical-studios/shipver/internal/runner"
)

const testConfig = `version_file: VERSION
tag_prefix: v
remote: origin
log: false
stage: [go.mod]
artifacts:
  - name: installer
    kind: inno
    files: [musicalc.iss]
  - name: desktop
    kind: desktop
    app: MusiCalc
    optional: true
    files: [musicalc.desktop, musicalc-pkg.desktop]
next_steps:
  - Build the application
`

const testISS = "#define MyAppName \"MusiCalc\"\n#define MyAppVersion \"0.8.2\"\n"

const testDesktop = "[Desktop Entry]\nName=MusiCalc\nStartupWMClass=MusiCalc v0.8.2\n"

// fakeRunner records commands; git diff reports staged changes by default
type fakeRunner struct {
	calls    []runner.Command
	outcomes map[string]runner.Outcome
}

func (f *fakeRunner) Run(ctx context.Context, c runner.Command) runner.Outcome {
	f.calls = append(f.calls, c)
	key := c.Name
	if len(c.Args) > 0 {
		key += " " + c.Args[0]
	}
	if out, ok := f.outcomes[key]; ok {
		return out
	}
	if key == "git diff" {
		return runner.Outcome{ExitCode: 1}
	}
	return runner.Outcome{Success: true}
}

func (f *fakeRunner) commandLines() []string {
	lines := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		lines = append(lines, c.Name+" "+strings.Join(c.Args, " "))
	}
	return lines
}

// fakePublisher records published tags
type fakePublisher struct {
	tags []string
	err  error
}

func (f *fakePublisher) Publish(ctx context.Context, tag, title, notes string) (string, error) {
	f.tags = append(f.tags, tag)
	if f.err != nil {
		return "", f.err
	}
	return "https://github.com/acme/musicalc/releases/tag/" + tag, nil
}

// fakeLookup returns a fixed latest release
type fakeLookup struct {
	release *github.Release
	err     error
}

func (f *fakeLookup) LatestRelease(ctx context.Context) (*github.Release, error) {
	return f.release, f.err
}

// newProjectDir creates a MusiCalc-like project at VERSION 0.8.3
func newProjectDir(t *testing.T, cfg string) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		config.ConfigFileName: cfg,
		"VERSION":             "0.8.3\n",
		"musicalc.iss":        testISS,
		"musicalc.desktop":    testDesktop,
		"go.mod":              "module example.com/musicalc\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func readProjectFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// useFakes swaps the runner and GitHub factories for the test's duration
func useFakes(t *testing.T, r *fakeRunner, pub release.Publisher, lookup releaseLookup) {
	t.Helper()
	savedRunner, savedPublisher, savedLookup := newRunner, newPublisher, newReleaseLookup
	t.Cleanup(func() {
		newRunner, newPublisher, newReleaseLookup = savedRunner, savedPublisher, savedLookup
	})

	newRunner = func() runner.Runner { return r }
	newPublisher = func(context.Context, *project) (release.Publisher, error) { return pub, nil }
	newReleaseLookup = func(context.Context, *project) (releaseLookup, error) { return lookup, nil }
}

// execute runs the root command in dir with the given stdin
func execute(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--dir", dir}, args...))
	err := cmd.Execute()
	return out.String(), err
}
