// Copyright (c) 2026 minircd contributors
// released under the MIT license

package replies

import (
	"errors"
	"fmt"
	"time"

	"github.com/ergochat/minircd/irc/commands"
	"github.com/ergochat/minircd/irc/wire"
)

const (
	// DefaultSource is the prefix used when no server name is supplied.
	DefaultSource = "localhost"
)

// numeric codes
const (
	RPL_WELCOME        = "001"
	RPL_YOURHOST       = "002"
	RPL_CREATED        = "003"
	RPL_MYINFO         = "004"
	ERR_UNKNOWNCOMMAND = "421"
	ERR_NEEDMOREPARAMS = "461"
)

// Reply is a numeric reply the server can send. The set of implementations is closed.
type Reply interface {
	// Code returns the three-digit numeric.
	Code() string
	// Params returns the parameters following the numeric.
	Params() []string

	reply()
}

// Welcome is RPL_WELCOME, the first reply after registration.
type Welcome struct {
	Nick string
	User string
	Host string
}

// YourHost is RPL_YOURHOST.
type YourHost struct {
	Nick    string
	Server  string
	Version string
}

// Created is RPL_CREATED.
type Created struct {
	Nick    string
	Created time.Time
}

// MyInfo is RPL_MYINFO.
type MyInfo struct {
	Nick         string
	Server       string
	Version      string
	UserModes    string
	ChannelModes string
}

// UnknownCommand is ERR_UNKNOWNCOMMAND.
type UnknownCommand struct {
	Command string
}

// NeedMoreParams is ERR_NEEDMOREPARAMS.
type NeedMoreParams struct {
	Command string
}

func (Welcome) Code() string        { return RPL_WELCOME }
func (YourHost) Code() string       { return RPL_YOURHOST }
func (Created) Code() string        { return RPL_CREATED }
func (MyInfo) Code() string         { return RPL_MYINFO }
func (UnknownCommand) Code() string { return ERR_UNKNOWNCOMMAND }
func (NeedMoreParams) Code() string { return ERR_NEEDMOREPARAMS }

func (r Welcome) Params() []string {
	return []string{r.Nick, fmt.Sprintf("Welcome to the network %s!%s@%s", r.Nick, r.User, r.Host)}
}

func (r YourHost) Params() []string {
	return []string{r.Nick, fmt.Sprintf("Your host is %s, running version %s", r.Server, r.Version)}
}

func (r Created) Params() []string {
	return []string{r.Nick, fmt.Sprintf("This server was created %s", r.Created.Format(time.RFC1123))}
}

func (r MyInfo) Params() []string {
	return []string{r.Nick, r.Server, r.Version, r.UserModes, r.ChannelModes}
}

func (r UnknownCommand) Params() []string {
	return []string{r.Command, "Unknown command"}
}

func (r NeedMoreParams) Params() []string {
	return []string{r.Command, "Not enough parameters"}
}

func (Welcome) reply()        {}
func (YourHost) reply()       {}
func (Created) reply()        {}
func (MyInfo) reply()         {}
func (UnknownCommand) reply() {}
func (NeedMoreParams) reply() {}

// Message renders the reply as a message from DefaultSource.
func Message(r Reply) wire.Message {
	return MessageFrom(DefaultSource, r)
}

// MessageFrom renders the reply as a message from the given server name.
func MessageFrom(source string, r Reply) wire.Message {
	if source == "" {
		source = DefaultSource
	}
	return wire.MakeMessage(source, r.Code(), r.Params()...)
}

// Line renders the reply as a wire line from DefaultSource, including CRLF.
func Line(r Reply) string {
	msg := Message(r)
	return msg.Line()
}

// FromError returns the reply corresponding to an error from commands.Interpret.
func FromError(err error) (Reply, bool) {
	var unknown *commands.UnknownCommandError
	if errors.As(err, &unknown) {
		return UnknownCommand{Command: unknown.Command}, true
	}
	var missing *commands.MissingParameterError
	if errors.As(err, &missing) {
		return NeedMoreParams{Command: missing.Command}, true
	}
	return nil, false
}
