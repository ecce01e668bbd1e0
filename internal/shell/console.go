// Package shell is the interactive text front end of the ledger: the
// first-run setup wizard and the command loop.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Console reads lines from an input stream and writes prompts to an output
// stream. A single Console must be shared by everything reading the same
// input, as it buffers ahead.
type Console struct {
	out   io.Writer
	lines chan string
	done  chan struct{}
	once  sync.Once
	err   error // read error, set before lines is closed
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	c := &Console{
		out:   out,
		lines: make(chan string),
		done:  make(chan struct{}),
	}
	go c.scan(in)
	return c
}

func (c *Console) scan(in io.Reader) {
	defer close(c.lines)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case c.lines <- scanner.Text():
		case <-c.done:
			return
		}
	}
	c.err = scanner.Err()
}

// ReadLine blocks until a line is available, the input ends (io.EOF) or ctx
// is cancelled.
func (c *Console) ReadLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-c.lines:
		if !ok {
			if c.err != nil {
				return "", fmt.Errorf("read input: %w", c.err)
			}
			return "", io.EOF
		}
		return strings.TrimRight(line, "\r"), nil
	}
}

// Prompt prints msg without a newline and reads the answer.
func (c *Console) Prompt(ctx context.Context, msg string) (string, error) {
	c.Print(msg)
	return c.ReadLine(ctx)
}

func (c *Console) Print(a ...any) {
	fmt.Fprint(c.out, a...)
}

func (c *Console) Println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

func (c *Console) Printf(format string, a ...any) {
	fmt.Fprintf(c.out, format, a...)
}

// Close stops the background reader.
func (c *Console) Close() {
	c.once.Do(func() { close(c.done) })
}
