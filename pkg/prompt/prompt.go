// Package prompt asks the operator yes/no questions.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Confirmer asks a yes/no question. defaultYes decides what an empty answer
// means and is reflected in the hint shown to the operator.
type Confirmer interface {
	Confirm(ctx context.Context, question string, defaultYes bool) (bool, error)
}

// Parse interprets an answer. An empty answer takes the default; otherwise
// only y/yes (any case) accepts, whatever the default.
func Parse(answer string, defaultYes bool) bool {
	a := strings.ToLower(strings.TrimSpace(answer))
	if a == "" {
		return defaultYes
	}
	return a == "y" || a == "yes"
}

// Hint returns the bracketed choice shown after a question.
func Hint(defaultYes bool) string {
	if defaultYes {
		return "(Y/n)"
	}
	return "(y/N)"
}

type line struct {
	text string
	err  error
}

// LineConfirmer reads answers one line at a time.
type LineConfirmer struct {
	out   io.Writer
	in    *bufio.Reader
	echo  bool
	lines chan line
}

// NewLineConfirmer returns a Confirmer reading from in and writing questions
// to out. When in is a file that is not a terminal the answer is echoed so
// the transcript stays readable.
func NewLineConfirmer(in io.Reader, out io.Writer) *LineConfirmer {
	echo := false
	if f, ok := in.(*os.File); ok {
		echo = !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
	}
	return &LineConfirmer{
		out:  out,
		in:   bufio.NewReader(in),
		echo: echo,
	}
}

// Confirm prints the question and waits for a line or for ctx to end.
// End of input counts as an empty answer.
func (c *LineConfirmer) Confirm(ctx context.Context, question string, defaultYes bool) (bool, error) {
	fmt.Fprintf(c.out, "%s %s: ", question, Hint(defaultYes))

	if c.lines == nil {
		c.lines = make(chan line)
		go c.readLines()
	}

	select {
	case <-ctx.Done():
		fmt.Fprintln(c.out)
		return false, ctx.Err()
	case l, ok := <-c.lines:
		if !ok {
			fmt.Fprintln(c.out)
			return defaultYes, nil
		}
		if l.err != nil {
			return false, fmt.Errorf("read answer: %w", l.err)
		}
		if c.echo {
			fmt.Fprintln(c.out, strings.TrimSpace(l.text))
		}
		return Parse(l.text, defaultYes), nil
	}
}

// readLines feeds c.lines until input ends. A single goroutine owns the
// reader so an abandoned question never loses the next answer.
func (c *LineConfirmer) readLines() {
	defer close(c.lines)
	for {
		text, err := c.in.ReadString('\n')
		if errors.Is(err, io.EOF) {
			if text != "" {
				c.lines <- line{text: text}
			}
			return
		}
		if err != nil {
			c.lines <- line{err: err}
			return
		}
		c.lines <- line{text: text}
	}
}
