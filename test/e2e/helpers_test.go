//go:build e2e

package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// CommandResult holds the result of running a command
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// runShipver executes the local binary with the given arguments in workDir.
// stdin feeds the interactive prompts; empty means no input.
func runShipver(t *testing.T, workDir, stdin string, args ...string) *CommandResult {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = workDir
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Env = append(os.Environ(), "GOCOVERDIR="+os.TempDir())

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := &CommandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: 0,
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = 1
		}
		// Log stderr on command failure for debugging
		if result.Stderr != "" {
			t.Logf("Command stderr: %s", result.Stderr)
		}
	}

	return result
}

// git runs git in dir and fails the test on error
func git(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %s failed: %v\n%s", strings.Join(args, " "), err, out)
	}
	return strings.TrimSpace(string(out))
}

// TestRepo is a working repository with a bare "origin" next to it
type TestRepo struct {
	Dir    string
	Remote string
}

// newTestRepo creates a committed project at VERSION 0.8.3 whose
// artifacts still carry 0.8.2, pushed to a local bare remote.
func newTestRepo(t *testing.T, config string) *TestRepo {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	base := t.TempDir()
	repo := &TestRepo{Dir: filepath.Join(base, "musicalc"), Remote: filepath.Join(base, "origin.git")}

	git(t, base, "init", "--bare", repo.Remote)
	if err := os.Mkdir(repo.Dir, 0755); err != nil {
		t.Fatal(err)
	}
	git(t, repo.Dir, "init")
	git(t, repo.Dir, "config", "user.email", "e2e@example.com")
	git(t, repo.Dir, "config", "user.name", "E2E")
	git(t, repo.Dir, "config", "commit.gpgsign", "false")
	git(t, repo.Dir, "config", "tag.gpgsign", "false")

	files := map[string]string{
		".shipver.yml":     config,
		"VERSION":          "0.8.3\n",
		"musicalc.iss":     "#define MyAppName \"MusiCalc\"\n#define MyAppVersion \"0.8.2\"\n",
		"musicalc.desktop": "[Desktop Entry]\nName=MusiCalc\nStartupWMClass=MusiCalc v0.8.2\n",
		".gitignore":       ".shipver/\n",
	}
	for name, content := range files {
		writeFile(t, repo.Dir, name, content)
	}

	git(t, repo.Dir, "add", "-A")
	git(t, repo.Dir, "commit", "-m", "Initial commit")
	git(t, repo.Dir, "branch", "-M", "main")
	git(t, repo.Dir, "remote", "add", "origin", repo.Remote)
	git(t, repo.Dir, "push", "-u", "origin", "main")
	return repo
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// assertContains checks that the output contains the expected substring.
// Fails the test if the substring is not found.
func assertContains(t *testing.T, output, expected string) {
	t.Helper()

	if !strings.Contains(output, expected) {
		t.Errorf("Expected output to contain %q\nGot: %s", expected, output)
	}
}

// assertExitCode checks that the command result has the expected exit code.
func assertExitCode(t *testing.T, result *CommandResult, expected int) {
	t.Helper()

	if result.ExitCode != expected {
		t.Errorf("Expected exit code %d, got %d\nStdout: %s\nStderr: %s",
			expected, result.ExitCode, result.Stdout, result.Stderr)
	}
}
