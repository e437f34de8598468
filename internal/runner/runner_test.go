package runner

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"strings"
	"testing"
)

func requireUnixShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExec_Success_CapturesStdout(t *testing.T) {
	requireUnixShell(t)

	out := New().Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "echo hello"},
		Dir:  t.TempDir(),
	})

	if !out.Success {
		t.Fatalf("Expected success, got %+v", out)
	}
	if strings.TrimSpace(out.Stdout) != "hello" {
		t.Errorf("Expected stdout 'hello', got %q", out.Stdout)
	}
	if out.ExitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", out.ExitCode)
	}
}

func TestExec_NonZeroExit_CapturesStderr(t *testing.T) {
	requireUnixShell(t)

	out := New().Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "echo boom >&2; exit 3"},
		Dir:  t.TempDir(),
	})

	if out.Success {
		t.Fatal("Expected failure outcome")
	}
	if out.ExitCode != 3 {
		t.Errorf("Expected exit code 3, got %d", out.ExitCode)
	}
	if strings.TrimSpace(out.Stderr) != "boom" {
		t.Errorf("Expected stderr 'boom', got %q", out.Stderr)
	}
}

func TestExec_RunsInGivenDirectory(t *testing.T) {
	requireUnixShell(t)
	dir := t.TempDir()

	out := New().Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "pwd -P"},
		Dir:  dir,
	})

	if !out.Success {
		t.Fatalf("Expected success, got %+v", out)
	}
	// TempDir may sit behind a symlink (macOS /var -> /private/var)
	if !strings.HasSuffix(strings.TrimSpace(out.Stdout), dir) {
		t.Errorf("Expected working directory %s, got %q", dir, out.Stdout)
	}
}

func TestExec_ArgumentsAreNotShellInterpreted(t *testing.T) {
	requireUnixShell(t)

	msg := `Release "1.0.0"; rm -rf /tmp/nothing $(whoami)`
	out := New().Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", `printf '%s' "$1"`, "sh", msg},
		Dir:  t.TempDir(),
	})

	if !out.Success {
		t.Fatalf("Expected success, got %+v", out)
	}
	if out.Stdout != msg {
		t.Errorf("Expected argument passed verbatim, got %q", out.Stdout)
	}
}

func TestExec_LookPathFailure_IsFailureOutcome(t *testing.T) {
	lookErr := errors.New("not found")
	e := &Exec{LookPath: func(string) (string, error) { return "", lookErr }}

	out := e.Run(context.Background(), Command{Name: "definitely-missing"})

	if out.Success {
		t.Fatal("Expected failure outcome")
	}
	if out.ExitCode != -1 {
		t.Errorf("Expected exit code -1, got %d", out.ExitCode)
	}
	if !errors.Is(out.Err, lookErr) {
		t.Errorf("Expected lookup error to be kept, got %v", out.Err)
	}
	if !strings.Contains(out.Stderr, "definitely-missing") {
		t.Errorf("Expected stderr to name the executable, got %q", out.Stderr)
	}
}

func TestExec_CancelledContext_IsFailureOutcome(t *testing.T) {
	requireUnixShell(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := New().Run(ctx, Command{Name: "sh", Args: []string{"-c", "sleep 5"}})

	if out.Success {
		t.Fatal("Expected failure outcome for cancelled context")
	}
	if out.Err == nil {
		t.Error("Expected Err to be set")
	}
}

func TestCommand_String(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want string
	}{
		{"plain", Command{Name: "git", Args: []string{"push", "origin"}}, "git push origin"},
		{"quoted", Command{Name: "git", Args: []string{"commit", "-m", "Release v1.0.0"}}, `git commit -m "Release v1.0.0"`},
		{"empty arg", Command{Name: "echo", Args: []string{""}}, `echo ""`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cmd.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
