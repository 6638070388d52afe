// Copyright (c) 2012-2014 Jeremy Latt
// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// Copyright (c) 2026 minircd contributors
// released under the MIT license

package irc

import (
	"fmt"
	"net"
	"runtime/debug"
	"strings"

	"github.com/ergochat/minircd/irc/commands"
	"github.com/ergochat/minircd/irc/replies"
	"github.com/ergochat/minircd/irc/utils"
	"github.com/ergochat/minircd/irc/wire"
)

const (
	// modes we advertise in RPL_MYINFO
	supportedUserModes    = "iw"
	supportedChannelModes = ""
)

// Session is one client connection. It remembers just enough of what the
// client sent to know when to welcome it.
type Session struct {
	server *Server
	conn   IRCConn
	host   string

	nick       string // * is used until actual nick is given
	username   string
	password   string
	invisible  bool
	wallops    bool
	registered bool
}

// NewSession returns a new session for the given connection.
func NewSession(server *Server, conn IRCConn) *Session {
	return &Session{
		server: server,
		conn:   conn,
		host:   hostForAddr(conn.RemoteAddr()),
		nick:   "*",
	}
}

// hostForAddr returns the IRC-ready hostname of a peer address.
func hostForAddr(addr net.Addr) string {
	ip := utils.AddrToIP(addr)
	if ip == nil {
		return "localhost"
	}
	return utils.IPStringToHostname(ip.String())
}

// Nick returns the client's current nickname, or * before one was sent.
func (session *Session) Nick() string {
	return session.nick
}

// Registered returns whether the client was sent the welcome burst.
func (session *Session) Registered() bool {
	return session.registered
}

func (session *Session) run() {
	server := session.server

	defer func() {
		if r := recover(); r != nil {
			server.logger.Error("internal",
				fmt.Sprintf("Client caused panic: %v\n%s", r, debug.Stack()))
			if server.Config().Debug.recoverFromErrors {
				server.logger.Error("internal", "Disconnecting client and attempting to recover")
			} else {
				panic(r)
			}
		}
		// ensure client connection gets closed
		session.conn.Close()
		server.logger.Info("connect-ip", fmt.Sprintf("Client disconnected from %s", session.host))
	}()

	for {
		lineBytes, err := session.conn.ReadLine()
		if err != nil {
			if err == errReadQ {
				server.logger.Info("connect-ip", session.host, "readQ exceeded")
			}
			return
		}
		line := string(lineBytes)

		if server.logger.IsLoggingRawIO() {
			server.logger.Debug("userinput", session.nick, "<- ", line)
		}

		replyList, err := session.ProcessLine(line)
		if err != nil {
			server.logger.Debug("userinput", session.nick, "dropping malformed line", err.Error())
			continue
		}

		for _, reply := range replyList {
			if err := session.Send(reply); err != nil {
				return
			}
		}
	}
}

// Send renders the reply with our server name as the prefix and writes it.
func (session *Session) Send(reply replies.Reply) error {
	line := replies.MessageFrom(session.server.Name(), reply).Line()

	if session.server.logger.IsLoggingRawIO() {
		session.server.logger.Debug("useroutput", session.nick, "-> ", strings.TrimRight(line, "\r\n"))
	}

	return session.conn.WriteLine([]byte(line))
}

// ProcessLine handles one line from the client (without its CRLF) and returns
// the replies to send back. An error means the line was malformed and should
// be dropped.
func (session *Session) ProcessLine(line string) (replyList []replies.Reply, err error) {
	msg, err := wire.ParseLine(line)
	if err != nil {
		return nil, err
	}

	command, err := commands.Interpret(msg)
	if err != nil {
		if reply, ok := replies.FromError(err); ok {
			return []replies.Reply{reply}, nil
		}
		return nil, err
	}

	switch command := command.(type) {
	case commands.Pass:
		// recorded only; we don't verify connection passwords
		session.password = command.Password
	case commands.Nick:
		session.nick = command.Nickname
	case commands.User:
		if session.username == "" {
			session.username = command.Username
			session.invisible, session.wallops = command.InitialModes()
		}
	}

	if !session.registered && session.nick != "*" && session.username != "" {
		replyList = session.welcome()
	}
	return replyList, nil
}

// welcome marks the session registered and returns the 001-004 burst.
func (session *Session) welcome() []replies.Reply {
	session.registered = true
	config := session.server.Config()
	session.server.logger.Info("connect", fmt.Sprintf("Client registered as %s!%s@%s", session.nick, session.username, session.host))

	return []replies.Reply{
		replies.Welcome{Nick: session.nick, User: session.username, Host: session.host},
		replies.YourHost{Nick: session.nick, Server: config.Server.Name, Version: Ver},
		replies.Created{Nick: session.nick, Created: config.Server.CreatedAt},
		replies.MyInfo{
			Nick:         session.nick,
			Server:       config.Server.Name,
			Version:      Ver,
			UserModes:    supportedUserModes,
			ChannelModes: supportedChannelModes,
		},
	}
}
