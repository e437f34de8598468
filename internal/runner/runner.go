// Package runner executes external commands and reports their outcome as a
// value. It never returns an error: launch failures and non-zero exits both
// come back as an Outcome with Success set to false.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/cli/safeexec"
)

// Command describes one external invocation.
// Args are passed to the process as-is; nothing is interpreted by a shell.
type Command struct {
	Name        string
	Args        []string
	Dir         string
	Description string
}

// String renders the command line for display purposes only
func (c Command) String() string {
	parts := append([]string{c.Name}, c.Args...)
	for i, p := range parts {
		if p == "" || strings.ContainsAny(p, " \t\"'") {
			parts[i] = fmt.Sprintf("%q", p)
		}
	}
	return strings.Join(parts, " ")
}

// Outcome is the result of running a Command
type Outcome struct {
	Success  bool
	ExitCode int
	Stdout   string
	Stderr   string
	// Err is set when the process could not be started or waited on
	Err error
}

// Runner runs commands. Implementations must not retry.
type Runner interface {
	Run(ctx context.Context, c Command) Outcome
}

// Exec runs commands as child processes
type Exec struct {
	// LookPath resolves executables; defaults to safeexec.LookPath
	LookPath func(file string) (string, error)
}

// New returns an Exec runner using safeexec for executable lookup
func New() *Exec {
	return &Exec{LookPath: safeexec.LookPath}
}

// Run executes c in c.Dir and captures both output streams.
func (e *Exec) Run(ctx context.Context, c Command) Outcome {
	lookPath := e.LookPath
	if lookPath == nil {
		lookPath = safeexec.LookPath
	}

	path, err := lookPath(c.Name)
	if err != nil {
		return Outcome{
			ExitCode: -1,
			Stderr:   fmt.Sprintf("%s: executable not found", c.Name),
			Err:      err,
		}
	}

	cmd := exec.CommandContext(ctx, path, c.Args...)
	cmd.Dir = c.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	out := Outcome{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err == nil {
		out.Success = true
		return out
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
	} else {
		out.ExitCode = -1
	}
	out.Err = err
	if strings.TrimSpace(out.Stderr) == "" {
		out.Stderr = err.Error()
	}
	return out
}
