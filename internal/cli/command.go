package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tasktracker/internal/userdata"
)

// ErrExit is returned by the exit command to end the session successfully.
var ErrExit = errors.New("exit requested")

const HelpMessage = `Commands:
  help                    show this message
  devwrite <key> <value>  set a profile field (name or age)
  exit                    quit`

// Command is one entry of the static command table.
type Command interface {
	Name() string
	Usage() string
	Run(ctx context.Context, s *Session, args []string) error
}

var commandTable = []Command{
	helpCommand{},
	devwriteCommand{},
	exitCommand{},
}

// Commands returns the command table keyed by command name.
func Commands() map[string]Command {
	out := make(map[string]Command, len(commandTable))
	for _, c := range commandTable {
		out[c.Name()] = c
	}
	return out
}

// ParseLine splits an input line on whitespace. The first token is the command
// name; ok is false for blank lines.
func ParseLine(line string) (name string, args []string, ok bool) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return "", nil, false
	}
	return tokens[0], tokens[1:], true
}

type helpCommand struct{}

func (helpCommand) Name() string  { return "help" }
func (helpCommand) Usage() string { return "help" }

func (helpCommand) Run(_ context.Context, s *Session, _ []string) error {
	s.println(HelpMessage)
	return nil
}

// devwriteCommand writes a single profile field directly. The value is every
// token after the key, joined by single spaces.
type devwriteCommand struct{}

func (devwriteCommand) Name() string  { return "devwrite" }
func (devwriteCommand) Usage() string { return "devwrite <key> <value>" }

func (c devwriteCommand) Run(_ context.Context, s *Session, args []string) error {
	if len(args) < 2 {
		s.printf("usage: %s\n", c.Usage())
		return nil
	}
	key := args[0]
	value := strings.Join(args[1:], " ")

	err := s.store.Update(userdata.Fields{key: value})
	if userdata.IsValidation(err) {
		s.logger.Debug("devwrite rejected", "key", key, "error", err)
		s.printf("invalid update: %v\n", err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("devwrite %s: %w", key, err)
	}
	s.printf("updated %s\n", key)
	return nil
}

type exitCommand struct{}

func (exitCommand) Name() string  { return "exit" }
func (exitCommand) Usage() string { return "exit" }

func (exitCommand) Run(context.Context, *Session, []string) error {
	return ErrExit
}
