package devloop

import (
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/fatih/color"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// recordingSender collects commands and can react to them.
type recordingSender struct {
	mu       sync.Mutex
	commands []string
	onSend   func(string)
	err      error
}

func (r *recordingSender) Send(command string) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	r.commands = append(r.commands, command)
	r.mu.Unlock()
	if r.onSend != nil {
		r.onSend(command)
	}
	return nil
}

func (r *recordingSender) sent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.commands...)
}

var errBrokenPipe = errors.New("broken pipe")
