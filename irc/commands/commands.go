// Copyright (c) 2026 minircd contributors
// released under the MIT license

package commands

import (
	"fmt"
	"strconv"

	"github.com/ergochat/minircd/irc/wire"
)

// Command is a registration command received from a client.
// The set of implementations is closed: Pass, Nick and User.
type Command interface {
	// Name returns the IRC verb of the command, e.g. "NICK".
	Name() string

	command()
}

// Pass is the PASS command.
type Pass struct {
	Password string
}

// Nick is the NICK command.
type Nick struct {
	Nickname string
}

// User is the USER command.
type User struct {
	Username string
	Mode     string
	Unused   string
	Realname string
}

func (Pass) Name() string { return "PASS" }
func (Nick) Name() string { return "NICK" }
func (User) Name() string { return "USER" }

func (Pass) command() {}
func (Nick) command() {}
func (User) command() {}

// User modes that may be requested through the USER mode bitmask (RFC 2812 3.1.3).
const (
	userModeWallops   = 1 << 2
	userModeInvisible = 1 << 3
)

// InitialModes returns the user modes requested by the numeric mode parameter.
// A mode that isn't an integer, like "*", requests nothing.
func (u User) InitialModes() (invisible, wallops bool) {
	mode, err := strconv.Atoi(u.Mode)
	if err != nil {
		return
	}
	return mode&userModeInvisible != 0, mode&userModeWallops != 0
}

// UnknownCommandError means that the message's command is not one we recognize.
type UnknownCommandError struct {
	Command string
}

func (err *UnknownCommandError) Error() string {
	return fmt.Sprintf("Unknown command %s", err.Command)
}

// MissingParameterError means that a recognized command lacked a required parameter.
// Index is the 0-based position of the first missing parameter.
type MissingParameterError struct {
	Command   string
	Parameter string
	Index     int
}

func (err *MissingParameterError) Error() string {
	return fmt.Sprintf("%s is missing a %s parameter (index %d)", err.Command, err.Parameter, err.Index)
}

var (
	passParams = []string{"password"}
	nickParams = []string{"nick"}
	userParams = []string{"user", "mode", "unused", "realname"}
)

// Interpret converts a parsed message into one of the registration commands.
// Matching on the command name is exact and case-sensitive.
func Interpret(msg wire.Message) (Command, error) {
	switch msg.Command {
	case "PASS":
		if err := requireParams(msg, passParams); err != nil {
			return nil, err
		}
		return Pass{Password: msg.Params[0]}, nil
	case "NICK":
		if err := requireParams(msg, nickParams); err != nil {
			return nil, err
		}
		return Nick{Nickname: msg.Params[0]}, nil
	case "USER":
		if err := requireParams(msg, userParams); err != nil {
			return nil, err
		}
		return User{
			Username: msg.Params[0],
			Mode:     msg.Params[1],
			Unused:   msg.Params[2],
			Realname: msg.Params[3],
		}, nil
	default:
		return nil, &UnknownCommandError{Command: msg.Command}
	}
}

// requireParams returns an error naming the first of `names` that msg lacks.
func requireParams(msg wire.Message, names []string) error {
	if len(msg.Params) >= len(names) {
		return nil
	}
	missing := len(msg.Params)
	return &MissingParameterError{
		Command:   msg.Command,
		Parameter: names[missing],
		Index:     missing,
	}
}
