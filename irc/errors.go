// Copyright (c) 2012-2014 Jeremy Latt
// Copyright (c) 2014-2015 Edmund Huber
// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// released under the MIT license

package irc

import "errors"

// Socket Errors
var (
	errReadQ              = errors.New("ReadQ Exceeded")
	errCantReloadListener = errors.New("can't switch a listener between stream and websocket")
)

// Config Errors
var (
	ErrNoListenersDefined    = errors.New("Server listening addresses missing")
	ErrServerNameMissing     = errors.New("Server name missing")
	ErrServerNameNotHostname = errors.New("Server name must match the format of a hostname")
	ErrReadQTooSmall         = errors.New("max-readq must be at least 512 bytes")
	ErrEnvVarMalformed       = errors.New("Environment variable override is malformed")
)
