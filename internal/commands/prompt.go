package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// prompter reads answers from the user. Prompts are written to out so
// that they never mix with command output.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
	tty bool

	readPassword func(fd int) ([]byte, error)
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	if in == nil {
		in = strings.NewReader("")
	}
	p := &prompter{in: bufio.NewReader(in), out: out, readPassword: term.ReadPassword}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
		p.tty = true
	}
	return p
}

// ReadLine prints prompt and returns the next input line without its
// line ending. A final line without newline is returned before io.EOF.
func (p *prompter) ReadLine(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Line asks for a value.
func (p *prompter) Line(label string) (string, error) {
	return p.ReadLine(label + ": ")
}

// Secret asks for a value without echo when reading from a terminal.
// Input already buffered (pasted together with an earlier answer) is
// consumed first; the terminal echoed it before the prompt anyway.
func (p *prompter) Secret(label string) (string, error) {
	if !p.tty || p.in.Buffered() > 0 {
		return p.Line(label)
	}
	fmt.Fprint(p.out, label+": ")
	b, err := p.readPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Confirm implements dashboard.Confirmer. Only "y" and "yes" accept.
func (p *prompter) Confirm(question string) bool {
	answer, err := p.ReadLine(question + " [y/N] ")
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
