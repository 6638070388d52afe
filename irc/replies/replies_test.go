// Copyright (c) 2026 minircd contributors
// released under the MIT license

package replies

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ergochat/minircd/irc/commands"
	"github.com/ergochat/minircd/irc/wire"
)

func TestLine(t *testing.T) {
	created := time.Date(2020, time.June, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		reply Reply
		want  string
	}{
		{
			"welcome",
			Welcome{Nick: "nick", User: "user", Host: "host"},
			":localhost 001 nick :Welcome to the network nick!user@host\r\n",
		},
		{
			"yourhost",
			YourHost{Nick: "nick", Server: "irc.example.net", Version: "minircd-0.1.0"},
			":localhost 002 nick :Your host is irc.example.net, running version minircd-0.1.0\r\n",
		},
		{
			"created",
			Created{Nick: "nick", Created: created},
			":localhost 003 nick :This server was created Mon, 01 Jun 2020 12:30:00 UTC\r\n",
		},
		{
			"myinfo",
			MyInfo{Nick: "nick", Server: "irc.example.net", Version: "minircd-0.1.0", UserModes: "iw", ChannelModes: "nt"},
			":localhost 004 nick irc.example.net minircd-0.1.0 iw :nt\r\n",
		},
		{
			"unknown command",
			UnknownCommand{Command: "FOO"},
			":localhost 421 FOO :Unknown command\r\n",
		},
		{
			"need more params",
			NeedMoreParams{Command: "USER"},
			":localhost 461 USER :Not enough parameters\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Line(tt.reply))
		})
	}
}

func TestMessageFrom(t *testing.T) {
	msg := MessageFrom("irc.example.net", UnknownCommand{Command: "FOO"})
	assert.Equal(t, wire.MakeMessage("irc.example.net", "421", "FOO", "Unknown command"), msg)

	msg = MessageFrom("", NeedMoreParams{Command: "NICK"})
	assert.Equal(t, DefaultSource, msg.Prefix)
	assert.Equal(t, ERR_NEEDMOREPARAMS, msg.Command)
}

func TestCodes(t *testing.T) {
	codes := map[string]Reply{
		"001": Welcome{},
		"002": YourHost{},
		"003": Created{},
		"004": MyInfo{},
		"421": UnknownCommand{},
		"461": NeedMoreParams{},
	}
	for code, reply := range codes {
		assert.Equal(t, code, reply.Code())
		assert.Len(t, reply.Code(), 3)
	}
}

func TestFromError(t *testing.T) {
	reply, ok := FromError(&commands.UnknownCommandError{Command: "FOO"})
	require.True(t, ok)
	assert.Equal(t, UnknownCommand{Command: "FOO"}, reply)

	reply, ok = FromError(&commands.MissingParameterError{Command: "USER", Parameter: "realname", Index: 3})
	require.True(t, ok)
	assert.Equal(t, NeedMoreParams{Command: "USER"}, reply)

	// wrapped errors are still recognized
	reply, ok = FromError(fmt.Errorf("line 3: %w", &commands.UnknownCommandError{Command: "BAR"}))
	require.True(t, ok)
	assert.Equal(t, UnknownCommand{Command: "BAR"}, reply)

	_, ok = FromError(errors.New("something else"))
	assert.False(t, ok)
	_, ok = FromError(wire.ErrorLineIsEmpty)
	assert.False(t, ok)
}

func TestInterpretToLine(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"FOO bar", ":localhost 421 FOO :Unknown command\r\n"},
		{"USER guest 0 *", ":localhost 461 USER :Not enough parameters\r\n"},
		{"NICK", ":localhost 461 NICK :Not enough parameters\r\n"},
		{":someone PASS", ":localhost 461 PASS :Not enough parameters\r\n"},
	}

	for _, tt := range tests {
		msg, err := wire.ParseLine(tt.line)
		require.NoError(t, err)
		_, err = commands.Interpret(msg)
		require.Error(t, err)
		reply, ok := FromError(err)
		require.True(t, ok)
		assert.Equal(t, tt.want, Line(reply))
	}
}
