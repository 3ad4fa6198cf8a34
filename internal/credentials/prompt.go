package credentials

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter asks the user for a value.
type Prompter interface {
	// Prompt reads one line of visible input.
	Prompt(label string) (string, error)

	// PromptSecret reads one line without echo when possible.
	PromptSecret(label string) (string, error)
}

// TerminalPrompter prompts on Out and reads from In. When In is a terminal,
// secrets are read with echo disabled; otherwise they are read as plain
// lines so piped input keeps working.
type TerminalPrompter struct {
	In  *os.File
	Out io.Writer

	scanner *bufio.Scanner
}

// NewTerminalPrompter returns a prompter bound to stdin and stderr.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{In: os.Stdin, Out: os.Stderr}
}

// Prompt implements Prompter.
func (p *TerminalPrompter) Prompt(label string) (string, error) {
	fmt.Fprint(p.Out, label)
	return p.readLine()
}

// PromptSecret implements Prompter.
func (p *TerminalPrompter) PromptSecret(label string) (string, error) {
	fmt.Fprint(p.Out, label)
	fd := int(p.In.Fd())
	if !term.IsTerminal(fd) {
		return p.readLine()
	}
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(p.Out)
	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func (p *TerminalPrompter) readLine() (string, error) {
	if p.scanner == nil {
		p.scanner = bufio.NewScanner(p.In)
	}
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

// ErrNoInput is returned when a required value was neither in the
// environment nor entered at the prompt.
var ErrNoInput = errors.New("no value entered")
