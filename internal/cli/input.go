package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// Prompter reads answers from the user.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	// fd is the terminal read by Password; -1 reads a plain line from in.
	fd int
}

// NewTerminalPrompter prompts on w and reads from stdin, hiding passwords
// when stdin is a terminal.
func NewTerminalPrompter(w io.Writer) *Prompter {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		fd = -1
	}
	return &Prompter{in: bufio.NewReader(os.Stdin), out: w, fd: fd}
}

// NewPrompter reads plain lines from r, passwords included.
func NewPrompter(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(r), out: w, fd: -1}
}

// Text prints prompt and reads one trimmed line. A partial last line before
// EOF is returned as is.
//
//	Prompt text
//	> _
func (p *Prompter) Text(prompt string) (string, error) {
	if _, err := fmt.Fprint(p.out, prompt+"\n> "); err != nil {
		return "", err
	}
	return p.line()
}

// TextDefault is Text where an empty answer returns def.
func (p *Prompter) TextDefault(prompt, def string) (string, error) {
	v, err := p.Text(fmt.Sprintf("%s [%s]", prompt, def))
	if err != nil {
		return "", err
	}
	if v == "" {
		return def, nil
	}
	return v, nil
}

// Password prints prompt and reads a secret without echo.
func (p *Prompter) Password(prompt string) (string, error) {
	if _, err := fmt.Fprint(p.out, prompt+": "); err != nil {
		return "", err
	}
	if p.fd < 0 {
		return p.rawLine()
	}

	pw, err := readPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// Confirm asks a yes/no question; only "y" or "yes" confirm.
func (p *Prompter) Confirm(prompt string) (bool, error) {
	v, err := p.Text(prompt + " [y/N]")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(v) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (p *Prompter) line() (string, error) {
	s, err := p.rawLine()
	return strings.TrimSpace(s), err
}

// rawLine reads one line without its line terminator.
func (p *Prompter) rawLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
