// Copyright (c) 2012-2014 Jeremy Latt
// Copyright (c) 2014-2015 Edmund Huber
// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// released under the MIT license

package irc

import (
	"fmt"
	"os"
	"os/signal"
	"sync"

	"github.com/okzk/sdnotify"

	"github.com/ergochat/minircd/irc/logger"
	"github.com/ergochat/minircd/irc/utils"
)

// Server is the main IRC daemon.
type Server struct {
	config       utils.ConfigStore[Config]
	listeners    map[string]IRCListener
	logger       *logger.Manager
	rehashMutex  sync.Mutex
	rehashSignal chan os.Signal
	exitSignals  chan os.Signal
}

// NewServer returns a new server, listening on the configured addresses.
func NewServer(config *Config, logger *logger.Manager) (*Server, error) {
	server := &Server{
		listeners:    make(map[string]IRCListener),
		logger:       logger,
		rehashSignal: make(chan os.Signal, 1),
		exitSignals:  make(chan os.Signal, len(utils.ServerExitSignals)),
	}

	if err := server.applyConfig(config); err != nil {
		return nil, err
	}

	// Attempt to clean up when receiving these signals.
	signal.Notify(server.exitSignals, utils.ServerExitSignals...)
	if len(utils.ServerRehashSignals) != 0 {
		signal.Notify(server.rehashSignal, utils.ServerRehashSignals...)
	}

	return server, nil
}

// Config returns the current config; it must not be modified.
func (server *Server) Config() *Config {
	return server.config.Get()
}

// Name returns the server name used as the prefix of our replies.
func (server *Server) Name() string {
	return server.Config().Server.Name
}

// Shutdown stops accepting new connections.
func (server *Server) Shutdown() {
	sdnotify.Stopping()
	server.logger.Info("server", "Stopping server")

	server.rehashMutex.Lock()
	defer server.rehashMutex.Unlock()

	for addr, listener := range server.listeners {
		if err := listener.Stop(); err != nil {
			server.logger.Error("listeners", fmt.Sprintf("Could not stop listener on %s: %s", addr, err.Error()))
		}
		delete(server.listeners, addr)
	}

	server.logger.Info("server", fmt.Sprintf("%s exiting", Ver))
}

// Run starts the server.
func (server *Server) Run() {
	sdnotify.Ready()

	for {
		select {
		case <-server.exitSignals:
			server.Shutdown()
			return

		case <-server.rehashSignal:
			server.logger.Info("server", "Rehashing due to SIGHUP")
			sdnotify.Reloading()
			if err := server.rehash(); err != nil {
				server.logger.Error("server", fmt.Sprintln("Failed to rehash:", err.Error()))
			}
			sdnotify.Ready()
		}
	}
}

// rehash reloads the config and applies the changes from the config file.
func (server *Server) rehash() error {
	server.logger.Info("rehash", "Starting rehash")

	config, err := LoadConfig(server.Config().Filename)
	if err != nil {
		return fmt.Errorf("Error loading config file config: %s", err.Error())
	}

	if err = server.applyConfig(config); err != nil {
		return fmt.Errorf("Error applying config changes: %s", err.Error())
	}

	server.logger.Info("rehash", "Rehash completed successfully")
	return nil
}

func (server *Server) applyConfig(config *Config) (err error) {
	server.rehashMutex.Lock()
	defer server.rehashMutex.Unlock()

	oldConfig := server.Config()
	if oldConfig != nil {
		// the logger was built from the initial config in main
		if err = server.logger.ApplyConfig(config.Logging); err != nil {
			return err
		}
	}

	server.config.Set(config)

	if oldConfig == nil || oldConfig.Server.Name != config.Server.Name {
		server.logger.Info("server", "Using server name", config.Server.Name)
	}

	return server.setupListeners(config)
}

// setupListeners stops listeners that were removed from the config (or changed
// between stream and websocket), and starts listeners that are new.
func (server *Server) setupListeners(config *Config) (err error) {
	logListener := func(addr string, config ListenerConfig) {
		kind := "plaintext"
		if config.WebSocket {
			kind = "websocket"
		}
		server.logger.Info("listeners", fmt.Sprintf("now listening on %s, %s", addr, kind))
	}

	for addr, listener := range server.listeners {
		newConfig, stillConfigured := config.Server.Listeners[addr]
		if stillConfigured && listener.Reload(newConfig) == nil {
			continue
		}
		listener.Stop()
		delete(server.listeners, addr)
		server.logger.Info("listeners", fmt.Sprintf("stopped listening on %s.", addr))
	}

	for newAddr, newConfig := range config.Server.Listeners {
		if _, exists := server.listeners[newAddr]; exists {
			continue
		}
		newListener, listenerErr := NewListener(server, newAddr, newConfig)
		if listenerErr != nil {
			server.logger.Error("listeners", "couldn't listen on", newAddr, listenerErr.Error())
			err = listenerErr
			continue
		}
		server.listeners[newAddr] = newListener
		logListener(newAddr, newConfig)
	}

	if len(config.Server.Listeners) == 0 {
		server.logger.Warning("listeners", "Not accepting connections. Please configure listeners.")
	}

	return
}

// RunClient serves one connection until it is closed.
func (server *Server) RunClient(conn IRCConn) {
	session := NewSession(server, conn)
	server.logger.Info("connect-ip", fmt.Sprintf("Client connecting from %s", session.host))
	session.run()
}
