package cli

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUsage is returned for lines that do not form a valid command.
var ErrUsage = errors.New("usage")

// Command verbs.
const (
	CmdAdd     = "add"
	CmdRemove  = "remove"
	CmdList    = "list"
	CmdCheck   = "check"
	CmdHistory = "history"
	CmdHelp    = "help"
	CmdExit    = "exit"
)

// Command is one parsed operator line.
type Command struct {
	Name    string
	Address string
}

// ParseCommand splits line into a verb and optional address.
// Only the verb is case-insensitive; addresses are case-sensitive base58.
// A blank line yields a zero Command and no error.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, nil
	}

	name := strings.ToLower(fields[0])
	args := fields[1:]

	switch name {
	case CmdAdd, CmdRemove, CmdHistory:
		if len(args) != 1 {
			return Command{}, fmt.Errorf("%w: %s <wallet_address>", ErrUsage, name)
		}
		return Command{Name: name, Address: args[0]}, nil
	case CmdList, CmdCheck, CmdHelp, CmdExit:
		if len(args) != 0 {
			return Command{}, fmt.Errorf("%w: %s takes no arguments", ErrUsage, name)
		}
		return Command{Name: name}, nil
	default:
		return Command{}, fmt.Errorf("%w: unknown command %q", ErrUsage, fields[0])
	}
}
