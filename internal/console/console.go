// Package console is the operator interface to a running server.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pixil98/go-mmo/internal/display"
	"github.com/pixil98/go-mmo/internal/game"
)

// World gives the console exclusive access to the simulation.
type World interface {
	Do(f func(w *game.World))
}

// UserError is a mistake in an operator command. Its message is shown as
// is.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

func NewUserError(format string, args ...any) *UserError {
	return &UserError{Message: fmt.Sprintf(format, args...)}
}

var errQuit = errors.New("quit")

type command struct {
	usage string
	help  string
	run   func(c *Console, args string) (string, error)
}

// Console executes operator commands against the world.
type Console struct {
	world    World
	commands map[string]command
	prompt   string
}

func New(world World) *Console {
	return &Console{
		world:    world,
		commands: builtinCommands(),
		prompt:   "> ",
	}
}

// Exec runs one command line and returns its output.
func (c *Console) Exec(line string) (string, error) {
	name, args, _ := strings.Cut(strings.TrimSpace(line), " ")
	if name == "" {
		return "", nil
	}
	cmd, ok := c.commands[strings.ToLower(name)]
	if !ok {
		return "", NewUserError("Unknown command %q. Type help for a list.", name)
	}
	out, err := cmd.run(c, strings.TrimSpace(args))
	if err != nil {
		return "", err
	}
	return display.Wrap(out), nil
}

func (c *Console) names() []string {
	names := make([]string, 0, len(c.commands))
	for n := range c.commands {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Serve runs an interactive session on rw until the operator quits, the
// connection ends, or ctx is cancelled.
func (c *Console) Serve(ctx context.Context, rw io.ReadWriter) error {
	input := make(chan string)
	inputErr := make(chan error, 1)
	go func() {
		defer close(input)
		scanner := bufio.NewScanner(rw)
		for scanner.Scan() {
			select {
			case input <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		inputErr <- scanner.Err()
	}()

	if err := c.write(rw, "Connected to the server console. Type help for commands.\n"+c.prompt); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			_ = c.write(rw, "\nServer is shutting down.\n")
			return nil

		case line, ok := <-input:
			if !ok {
				return <-inputErr
			}

			out, err := c.Exec(line)
			var userErr *UserError
			switch {
			case errors.Is(err, errQuit):
				return c.write(rw, "Bye.\n")
			case errors.As(err, &userErr):
				out = userErr.Message
			case err != nil:
				return fmt.Errorf("running %q: %w", line, err)
			}

			if out != "" && !strings.HasSuffix(out, "\n") {
				out += "\n"
			}
			if err := c.write(rw, out+c.prompt); err != nil {
				return err
			}
		}
	}
}

func (c *Console) write(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	if err != nil {
		return fmt.Errorf("writing to console: %w", err)
	}
	return nil
}
