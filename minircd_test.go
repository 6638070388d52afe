// Copyright (c) 2026 minircd contributors
// released under the MIT license

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribeLine(t *testing.T) {
	var out bytes.Buffer
	describeLine(&out, "NICK dan\r\n")
	assert.Equal(t, `line:    NICK dan
  prefix:  ""
  command: "NICK"
  params:  ["dan"]
  wire:    NICK :dan
  NICK: {Nickname:dan}
`, out.String())
}

func TestDescribeLineErrors(t *testing.T) {
	var out bytes.Buffer
	describeLine(&out, ":irc.example.net")
	assert.Contains(t, out.String(), "error: Found prefix indication, but no command")

	out.Reset()
	describeLine(&out, "USER d 0")
	assert.Contains(t, out.String(), "error: USER is missing a unused parameter (index 2)")
	assert.Contains(t, out.String(), "reply: :localhost 461 USER :Not enough parameters")
}
