// Copyright (c) 2026 minircd contributors
// released under the MIT license

// Package wire converts single IRC protocol lines to and from Message values.
//
// Parsing and serializing are intentionally asymmetric. On input, the last
// parameter only counts as "trailing" when it is introduced by " :"; on
// output, the last parameter is always written with a leading colon, even
// when it has no spaces. A parsed line therefore may not serialize back to
// the same bytes, but a serialized Message always parses back to the same
// parameters.
package wire

import (
	"errors"
	"strings"
)

var (
	// ErrorLineIsEmpty indicates that a line was empty.
	ErrorLineIsEmpty = errors.New("IRC message may not be empty")
	// ErrorPrefixUnterminated indicates a prefix marker with no space after it,
	// which leaves no room for a command.
	ErrorPrefixUnterminated = errors.New("Found prefix indication, but no command")
	// ErrorPrefixEmpty indicates a prefix marker immediately followed by a space.
	ErrorPrefixEmpty = errors.New("Found prefix indication, but no prefix")
	// ErrorCommandMissing indicates that the line had no command.
	ErrorCommandMissing = errors.New("IRC messages MUST have a command")
)

const (
	crlf           = "\r\n"
	trailingMarker = " :"
)

// Message represents a single IRC protocol line.
type Message struct {
	// Prefix is the message source; "" means the line had no prefix.
	Prefix  string
	Command string
	Params  []string
}

// MakeMessage returns a Message with the given contents.
func MakeMessage(prefix string, command string, params ...string) Message {
	return Message{
		Prefix:  prefix,
		Command: command,
		Params:  params,
	}
}

// ParseLine parses a single line (without its CRLF) into a Message.
func ParseLine(line string) (msg Message, err error) {
	if line == "" {
		return msg, ErrorLineIsEmpty
	}

	if line[0] == ':' {
		prefixEnd := strings.IndexByte(line[1:], ' ')
		switch prefixEnd {
		case -1:
			return msg, ErrorPrefixUnterminated
		case 0:
			return msg, ErrorPrefixEmpty
		}
		msg.Prefix = line[1 : prefixEnd+1]
		// skip the prefix and the space that terminates it
		line = line[prefixEnd+2:]
	}

	commandEnd := strings.IndexByte(line, ' ')
	if commandEnd == -1 {
		commandEnd = len(line)
	}
	if commandEnd == 0 {
		return Message{}, ErrorCommandMissing
	}
	msg.Command = line[:commandEnd]

	// the space after the command stays in place: the trailing marker is
	// " :", so a trailing parameter right after the command still matches
	line = line[commandEnd:]

	var trailing string
	hasTrailing := false
	if idx := strings.Index(line, trailingMarker); idx != -1 {
		trailing = line[idx+len(trailingMarker):]
		hasTrailing = true
		line = line[:idx]
	}

	if line != "" {
		msg.Params = strings.Split(line[1:], " ")
	}
	if hasTrailing {
		msg.Params = append(msg.Params, trailing)
	}

	return msg, nil
}

// Line returns the wire form of the message, including the final CRLF.
// The last parameter is always written as a trailing parameter.
func (msg Message) Line() string {
	var buf strings.Builder

	if msg.Prefix != "" {
		buf.WriteByte(':')
		buf.WriteString(msg.Prefix)
		buf.WriteByte(' ')
	}
	buf.WriteString(msg.Command)

	if len(msg.Params) > 0 {
		last := len(msg.Params) - 1
		for _, param := range msg.Params[:last] {
			buf.WriteByte(' ')
			buf.WriteString(param)
		}
		buf.WriteString(trailingMarker)
		buf.WriteString(msg.Params[last])
	}

	buf.WriteString(crlf)
	return buf.String()
}

// String returns a debugging representation of the message.
func (msg Message) String() string {
	return strings.TrimSuffix(msg.Line(), crlf)
}
