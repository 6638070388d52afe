// Copyright (c) 2026 minircd contributors
// released under the MIT license

package irc

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ergochat/minircd/irc/logger"
	"github.com/ergochat/minircd/irc/replies"
	"github.com/ergochat/minircd/irc/wire"
)

var testCreatedAt = time.Date(2020, time.June, 1, 12, 30, 0, 0, time.UTC)

// newTestServer returns a server with no listeners, for driving sessions directly.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	logManager, err := logger.NewManager(nil)
	require.NoError(t, err)

	config := new(Config)
	config.Server.Name = "irc.example.net"
	config.Server.CreatedAt = testCreatedAt
	config.Server.MaxReadQBytes = 512
	config.Debug.recoverFromErrors = true

	server := &Server{
		listeners: make(map[string]IRCListener),
		logger:    logManager,
	}
	server.config.Set(config)
	return server
}

// discardConn is an IRCConn that is never read from.
type discardConn struct {
	addr net.Addr
}

func (c discardConn) RemoteAddr() net.Addr               { return c.addr }
func (c discardConn) WriteLine([]byte) error             { return nil }
func (c discardConn) ReadLine() (line []byte, err error) { return nil, net.ErrClosed }
func (c discardConn) Close() error                       { return nil }

func newTestSession(t *testing.T) *Session {
	addr := &net.TCPAddr{IP: net.ParseIP("192.0.2.7"), Port: 50123}
	return NewSession(newTestServer(t), discardConn{addr: addr})
}

func TestSessionHost(t *testing.T) {
	session := newTestSession(t)
	assert.Equal(t, "192.0.2.7", session.host)

	v6 := NewSession(newTestServer(t), discardConn{addr: &net.TCPAddr{IP: net.ParseIP("::1")}})
	assert.Equal(t, "0::1", v6.host)

	unix := NewSession(newTestServer(t), discardConn{addr: &net.UnixAddr{Name: "/tmp/minircd.sock", Net: "unix"}})
	assert.Equal(t, "127.0.0.1", unix.host)

	unknown := NewSession(newTestServer(t), discardConn{})
	assert.Equal(t, "localhost", unknown.host)
}

func TestProcessLineRegistration(t *testing.T) {
	session := newTestSession(t)

	replyList, err := session.ProcessLine("PASS hunter2")
	require.NoError(t, err)
	assert.Empty(t, replyList)
	assert.Equal(t, "hunter2", session.password)

	replyList, err = session.ProcessLine("NICK dan")
	require.NoError(t, err)
	assert.Empty(t, replyList)
	assert.Equal(t, "dan", session.Nick())
	assert.False(t, session.Registered())

	replyList, err = session.ProcessLine("USER d 8 * :Dan Smith")
	require.NoError(t, err)
	assert.True(t, session.Registered())
	assert.True(t, session.invisible)
	assert.False(t, session.wallops)

	expected := []replies.Reply{
		replies.Welcome{Nick: "dan", User: "d", Host: "192.0.2.7"},
		replies.YourHost{Nick: "dan", Server: "irc.example.net", Version: Ver},
		replies.Created{Nick: "dan", Created: testCreatedAt},
		replies.MyInfo{Nick: "dan", Server: "irc.example.net", Version: Ver, UserModes: "iw", ChannelModes: ""},
	}
	assert.Equal(t, expected, replyList)

	// the welcome burst is sent only once
	replyList, err = session.ProcessLine("NICK dan2")
	require.NoError(t, err)
	assert.Empty(t, replyList)
	assert.Equal(t, "dan2", session.Nick())
}

func TestProcessLineUserBeforeNick(t *testing.T) {
	session := newTestSession(t)

	replyList, err := session.ProcessLine("USER d 0 * :Dan")
	require.NoError(t, err)
	assert.Empty(t, replyList)

	replyList, err = session.ProcessLine("NICK dan")
	require.NoError(t, err)
	require.Len(t, replyList, 4)
	assert.Equal(t, replies.RPL_WELCOME, replyList[0].Code())
}

func TestProcessLineErrors(t *testing.T) {
	session := newTestSession(t)

	replyList, err := session.ProcessLine("PRIVMSG #chan :hello")
	require.NoError(t, err)
	assert.Equal(t, []replies.Reply{replies.UnknownCommand{Command: "PRIVMSG"}}, replyList)

	replyList, err = session.ProcessLine("USER d 0 *")
	require.NoError(t, err)
	assert.Equal(t, []replies.Reply{replies.NeedMoreParams{Command: "USER"}}, replyList)
	assert.False(t, session.Registered())

	_, err = session.ProcessLine("")
	assert.ErrorIs(t, err, wire.ErrorLineIsEmpty)

	_, err = session.ProcessLine(":irc.example.net")
	assert.ErrorIs(t, err, wire.ErrorPrefixUnterminated)
}

func TestSessionRun(t *testing.T) {
	server := newTestServer(t)
	client, serverConn := net.Pipe()
	defer client.Close()

	done := make(chan struct{})
	go func() {
		server.RunClient(NewIRCStreamConn(serverConn, server.Config().Server.MaxReadQBytes))
		close(done)
	}()

	reader := bufio.NewReader(client)
	readLine := func() string {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		return line
	}

	// malformed lines are dropped without a reply
	_, err := client.Write([]byte(":\r\n"))
	require.NoError(t, err)

	_, err = client.Write([]byte("FOO bar\r\n"))
	require.NoError(t, err)
	assert.Equal(t, ":irc.example.net 421 FOO :Unknown command\r\n", readLine())

	_, err = client.Write([]byte("NICK dan\r\nUSER d 0 * :Dan\r\n"))
	require.NoError(t, err)
	assert.Equal(t, ":irc.example.net 001 dan :Welcome to the network dan!d@localhost\r\n", readLine())
	assert.Equal(t, ":irc.example.net 002 dan :Your host is irc.example.net, running version "+Ver+"\r\n", readLine())
	assert.Equal(t, ":irc.example.net 003 dan :This server was created Mon, 01 Jun 2020 12:30:00 UTC\r\n", readLine())
	assert.Equal(t, ":irc.example.net 004 dan irc.example.net "+Ver+" iw :\r\n", readLine())

	client.Close()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("session did not exit after the client disconnected")
	}
}
