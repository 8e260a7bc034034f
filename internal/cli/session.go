package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"tasktracker/internal/userdata"
)

// ErrNoInput is returned when input ends before a required answer is given.
var ErrNoInput = errors.New("input ended before a name was entered")

const (
	NewUserMessage = `
Welcome to Task Tracker Extreme!
This is the best task tracker CLI program that has ever been made.
If the application is unsatisfactory, please reach out and I'll be sure to make it right.

`
	NamePrompt = "To start, what's your name?"
	LoopPrompt = "What would you like to do? (type 'help' for commands, 'exit' to exit)"
)

type IOStreams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Session is one interactive run: a startup greeting followed by the command
// loop. It is not safe for concurrent use.
type Session struct {
	store    *userdata.Store
	logger   *slog.Logger
	in       *bufio.Reader
	out      io.Writer
	commands map[string]Command
}

func NewSession(store *userdata.Store, streams IOStreams, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{
		store:    store,
		logger:   logger,
		in:       bufio.NewReader(streams.In),
		out:      streams.Out,
		commands: Commands(),
	}
}

// Start greets the user. A first-time user (no name on file) is asked for a
// name, which is persisted before the greeting.
func (s *Session) Start(ctx context.Context) error {
	created, err := s.store.Ensure()
	if err != nil {
		return err
	}
	if created {
		s.logger.Debug("initialized user data", "path", s.store.Path())
	}

	profile, err := s.store.Read()
	if err != nil {
		return err
	}
	if profile.HasName() {
		s.printf("Welcome back, %s!\n", profile.DisplayName())
		return nil
	}

	s.printf("%s", NewUserMessage)
	var name string
	for name == "" {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := s.readLine(NamePrompt)
		if errors.Is(err, io.EOF) {
			return ErrNoInput
		}
		if err != nil {
			return err
		}
		name = strings.TrimSpace(line)
	}

	if err := s.store.Update(userdata.Fields{userdata.FieldName: name}); err != nil {
		return err
	}
	s.printf("Glad you're here, %s!\n", name)
	return nil
}

// Loop reads and dispatches commands until exit, end of input, or a fatal
// store error.
func (s *Session) Loop(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := s.readLine(LoopPrompt)
		if errors.Is(err, io.EOF) {
			s.logger.Debug("end of input")
			return nil
		}
		if err != nil {
			return err
		}

		name, args, ok := ParseLine(line)
		if !ok {
			continue
		}
		s.printf("    COMMAND: %s\n", name)
		s.printf("    ARGS: %q\n", args)
		s.logger.Debug("dispatch", "command", name, "args", args)

		if err := s.Dispatch(ctx, name, args); err != nil {
			if errors.Is(err, ErrExit) {
				return nil
			}
			return err
		}
	}
}

// Dispatch runs the command registered under name. Unknown names are reported
// to the user and are not an error.
func (s *Session) Dispatch(ctx context.Context, name string, args []string) error {
	cmd, ok := s.commands[name]
	if !ok {
		s.logger.Debug("unknown command", "command", name)
		s.printf("unknown command %q (type 'help' for commands)\n", name)
		return nil
	}
	return cmd.Run(ctx, s, args)
}

// readLine prints prompt and reads one line without a length limit. A final
// line with no trailing newline is still returned before io.EOF.
func (s *Session) readLine(prompt string) (string, error) {
	s.println(prompt)
	line, err := s.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Session) println(line string) {
	fmt.Fprintln(s.out, line)
}
