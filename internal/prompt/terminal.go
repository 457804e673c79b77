package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Terminal prompts on a TTY with echo disabled for passwords.
type Terminal struct {
	in  *os.File
	out io.Writer

	reader *bufio.Reader
}

// NewTerminal prompts on stdin, writing prompts to stderr so stdout stays
// clean for command output.
func NewTerminal() *Terminal {
	return &Terminal{in: os.Stdin, out: os.Stderr, reader: bufio.NewReader(os.Stdin)}
}

// Interactive reports whether stdin is a terminal
func (t *Terminal) Interactive() bool {
	return term.IsTerminal(int(t.in.Fd()))
}

// Password reads a line with echo disabled
func (t *Terminal) Password(prompt string) (string, error) {
	if !t.Interactive() {
		return "", ErrNotInteractive
	}

	fmt.Fprint(t.out, prompt+": ")
	b, err := term.ReadPassword(int(t.in.Fd()))
	fmt.Fprintln(t.out)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(b), nil
}

// Confirm asks a yes/no question, re-asking on invalid answers
func (t *Terminal) Confirm(question string, def bool) (bool, error) {
	if !t.Interactive() {
		return def, ErrNotInteractive
	}

	for {
		fmt.Fprint(t.out, question+confirmSuffix(def))
		line, err := readLine(t.reader)
		if err != nil {
			fmt.Fprintln(t.out)
			return def, nil
		}
		if answer, ok := ParseYesNo(line, def); ok {
			return answer, nil
		}
		fmt.Fprintln(t.out, "Error: invalid input")
	}
}

// Auto picks the terminal when stdin is a TTY and NonInteractive otherwise.
func Auto() Prompter {
	t := NewTerminal()
	if t.Interactive() {
		return t
	}
	return NonInteractive{}
}

var _ Prompter = (*Terminal)(nil)
