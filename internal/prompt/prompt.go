// Package prompt provides the interactive input used as the last credential
// source: a masked password prompt and a yes/no confirmation.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNotInteractive is returned by providers that cannot ask the user.
var ErrNotInteractive = errors.New("no interactive input available")

// Prompter asks the user for input. Password renders "<prompt>: " and reads
// a line without echo; Confirm renders "<question> [y/N]: " (or [Y/n]) and
// returns def on empty input or EOF.
type Prompter interface {
	Interactive() bool
	Password(prompt string) (string, error)
	Confirm(question string, def bool) (bool, error)
}

// Stream reads answers line by line from r and writes prompts to w. It backs
// password --stdin and scripted tests.
type Stream struct {
	r *bufio.Reader
	w io.Writer
}

// NewStream creates a Stream prompter
func NewStream(r io.Reader, w io.Writer) *Stream {
	return &Stream{r: bufio.NewReader(r), w: w}
}

// Interactive is always true; running out of input surfaces as io.EOF.
func (s *Stream) Interactive() bool {
	return true
}

// Password writes the prompt, reads one line and ends the prompt line
// without echoing the answer.
func (s *Stream) Password(prompt string) (string, error) {
	fmt.Fprint(s.w, prompt+": ")
	line, err := readLine(s.r)
	fmt.Fprintln(s.w)
	if err != nil {
		return "", err
	}
	return line, nil
}

// Confirm writes the question, echoes the answer and re-asks on invalid input.
func (s *Stream) Confirm(question string, def bool) (bool, error) {
	for {
		fmt.Fprint(s.w, question+confirmSuffix(def))
		line, err := readLine(s.r)
		if err != nil {
			fmt.Fprintln(s.w)
			if errors.Is(err, io.EOF) {
				return def, nil
			}
			return def, err
		}
		fmt.Fprintln(s.w, line)

		if answer, ok := ParseYesNo(line, def); ok {
			return answer, nil
		}
		fmt.Fprintln(s.w, "Error: invalid input")
	}
}

// NonInteractive refuses every prompt.
type NonInteractive struct{}

// Interactive returns false
func (NonInteractive) Interactive() bool { return false }

// Password returns ErrNotInteractive
func (NonInteractive) Password(string) (string, error) { return "", ErrNotInteractive }

// Confirm returns ErrNotInteractive
func (NonInteractive) Confirm(_ string, def bool) (bool, error) { return def, ErrNotInteractive }

// ParseYesNo interprets a confirmation answer. Empty input yields def; ok is
// false for anything that is not y/yes/n/no.
func ParseYesNo(answer string, def bool) (value bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "":
		return def, true
	case "y", "yes":
		return true, true
	case "n", "no":
		return false, true
	}
	return def, false
}

func confirmSuffix(def bool) string {
	if def {
		return " [Y/n]: "
	}
	return " [y/N]: "
}

// readLine returns the next line without its terminator. A final line
// without newline is returned; io.EOF only when nothing was read.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var (
	_ Prompter = (*Stream)(nil)
	_ Prompter = NonInteractive{}
)
