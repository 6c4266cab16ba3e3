package bot

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Console is a local transport: one command per input line, replies written to out.
// It serves a single session.
type Console struct {
	dispatcher *Dispatcher
	in         io.Reader
	out        io.Writer
	sessionID  string
}

// NewConsole creates a console transport for the given session
func NewConsole(dispatcher *Dispatcher, in io.Reader, out io.Writer, sessionID string) *Console {
	return &Console{
		dispatcher: dispatcher,
		in:         in,
		out:        out,
		sessionID:  sessionID,
	}
}

// Run reads until EOF or until ctx is cancelled. Input is read on its own
// goroutine so a read blocked on a terminal does not hold up cancellation.
func (c *Console) Run(ctx context.Context) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	stop := make(chan struct{})
	defer close(stop)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-stop:
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}

		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return fmt.Errorf("failed to read input: %w", err)
				}
				return nil
			}
			line = strings.TrimSpace(l)
		}

		if line == "" || ctx.Err() != nil {
			continue
		}

		reply := c.dispatcher.Handle(ctx, ParseText(c.sessionID, line))
		if _, err := fmt.Fprintf(c.out, "%s\n\n", reply.Text); err != nil {
			return fmt.Errorf("failed to write reply: %w", err)
		}
	}
}
