// Copyright (c) 2012-2014 Jeremy Latt
// Copyright (c) 2014-2015 Edmund Huber
// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// released under the MIT license

package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/docopt/docopt-go"
	"github.com/ergochat/irc-go/ircfmt"

	"github.com/ergochat/minircd/irc"
	"github.com/ergochat/minircd/irc/commands"
	"github.com/ergochat/minircd/irc/logger"
	"github.com/ergochat/minircd/irc/replies"
	"github.com/ergochat/minircd/irc/wire"
)

// set via linker flags, either by make or by goreleaser:
var commit = ""  // git hash
var version = "" // tagged version

// describeLine parses and interprets one line, and describes what it found.
func describeLine(out io.Writer, line string) {
	line = strings.TrimRight(line, "\r\n")
	fmt.Fprintf(out, "line:    %s\n", ircfmt.Escape(line))

	msg, err := wire.ParseLine(line)
	if err != nil {
		fmt.Fprintf(out, "  error: %s\n", err.Error())
		return
	}
	fmt.Fprintf(out, "  prefix:  %q\n", msg.Prefix)
	fmt.Fprintf(out, "  command: %q\n", msg.Command)
	fmt.Fprintf(out, "  params:  %q\n", msg.Params)
	fmt.Fprintf(out, "  wire:    %s\n", ircfmt.Escape(msg.String()))

	command, err := commands.Interpret(msg)
	if err != nil {
		fmt.Fprintf(out, "  error: %s\n", err.Error())
		if reply, ok := replies.FromError(err); ok {
			fmt.Fprintf(out, "  reply: %s\n", ircfmt.Escape(replies.Message(reply).String()))
		}
		return
	}
	fmt.Fprintf(out, "  %s: %+v\n", command.Name(), command)
}

// implements the `minircd parse` command
func doParse(lines []string) {
	if len(lines) != 0 {
		for _, line := range lines {
			describeLine(os.Stdout, line)
		}
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		describeLine(os.Stdout, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		log.Fatal("Error reading input:", err.Error())
	}
}

func main() {
	irc.SetVersionString(version, commit)
	usage := `minircd.
Usage:
	minircd run [--conf <filename>] [--quiet] [--smoke]
	minircd parse [<line>...]
	minircd -h | --help
	minircd --version
Options:
	--conf <filename>  Configuration file to use [default: ircd.yaml].
	--quiet            Don't show startup/shutdown lines.
	--smoke            Load the config and start listening, then exit.
	-h --help          Show this screen.
	--version          Show version.`

	arguments, _ := docopt.ParseArgs(usage, nil, irc.Ver)

	// don't require a config file for parse
	if arguments["parse"].(bool) {
		lines, _ := arguments["<line>"].([]string)
		doParse(lines)
		return
	}

	configfile := arguments["--conf"].(string)
	config, err := irc.LoadConfig(configfile)
	if err != nil {
		log.Fatal("Config file did not load successfully: ", err.Error())
	}

	logman, err := logger.NewManager(config.Logging)
	if err != nil {
		log.Fatal("Logger did not load successfully:", err.Error())
	}
	defer logman.Close()

	if arguments["run"].(bool) {
		if !arguments["--quiet"].(bool) {
			logman.Info("server", fmt.Sprintf("%s starting", irc.Ver))
		}

		// warning if running a non-final version
		if strings.Contains(irc.Ver, "unreleased") {
			logman.Warning("server", "You are currently running an unreleased version of minircd that may be unstable.")
		}

		server, err := irc.NewServer(config, logman)
		if err != nil {
			logman.Error("server", fmt.Sprintf("Could not load server: %s", err.Error()))
			logman.Close()
			os.Exit(1)
		}
		if !arguments["--smoke"].(bool) {
			server.Run()
		} else {
			server.Shutdown()
		}
	}
}
