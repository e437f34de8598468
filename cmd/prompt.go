package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rubrical-studios/shipver/internal/release"
	"github.com/rubrical-studios/shipver/internal/ui"
)

// errNoInput is returned when stdin closes while an answer is needed
var errNoInput = errors.New("no input available (use --version, --keep or --yes to run non-interactively)")

// consolePrompter reads answers line by line from the terminal
type consolePrompter struct {
	reader *bufio.Reader
	out    io.Writer
	ui     *ui.UI
}

func newConsolePrompter(in io.Reader, out io.Writer, u *ui.UI) *consolePrompter {
	return &consolePrompter{reader: bufio.NewReader(in), out: out, ui: u}
}

// KeepVersion keeps the version unless the answer is n or no
func (p *consolePrompter) KeepVersion(current release.Version) (bool, error) {
	answer, err := p.ask(fmt.Sprintf("Keep version %s?", current), "Y/n")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "n", "no":
		return false, nil
	}
	return true, nil
}

func (p *consolePrompter) EnterVersion() (string, error) {
	return p.ask("Enter new version (format: X.Y.Z)", "")
}

func (p *consolePrompter) CommitMessage(defaultMessage string) (string, error) {
	return p.ask("Enter release commit message", defaultMessage)
}

func (p *consolePrompter) ask(question, hint string) (string, error) {
	fmt.Fprint(p.out, p.ui.Prompt(question, hint))
	line, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(p.out)
			return "", errNoInput
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// flagPrompter answers from command-line flags and falls back to next
// for anything the flags leave open
type flagPrompter struct {
	keep    bool
	yes     bool
	message string
	next    release.Prompter
}

func (p *flagPrompter) KeepVersion(current release.Version) (bool, error) {
	if p.keep || p.yes {
		return true, nil
	}
	return p.next.KeepVersion(current)
}

func (p *flagPrompter) EnterVersion() (string, error) {
	return p.next.EnterVersion()
}

func (p *flagPrompter) CommitMessage(defaultMessage string) (string, error) {
	if p.message != "" {
		return p.message, nil
	}
	if p.yes {
		return "", nil
	}
	return p.next.CommitMessage(defaultMessage)
}
