package devloop

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

const (
	ConsolePrompt = ">>> "
	ConsoleExit   = "exit"
)

// Console forwards operator lines to the server until "exit", EOF, or
// ctx is done. Lines are sent verbatim apart from the line terminator.
// A reader blocked on a terminal is abandoned, not interrupted, when ctx
// ends first.
func Console(ctx context.Context, in io.Reader, out io.Writer, s Sender) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-stop:
				return
			}
		}
		readErr <- sc.Err()
	}()

	for {
		fmt.Fprint(out, ConsolePrompt)
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("console: read: %w", err)
					}
				default:
				}
				return nil
			}
			line = strings.TrimSuffix(line, "\r")
			if line == ConsoleExit {
				return nil
			}
			if err := s.Send(line); err != nil {
				return fmt.Errorf("console: %w", err)
			}
		}
	}
}
