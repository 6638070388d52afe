// Copyright (c) 2012-2014 Jeremy Latt
// Copyright (c) 2014-2015 Edmund Huber
// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// released under the MIT license

package irc

import (
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"
	"time"

	"code.cloudfoundry.org/bytefmt"
	"github.com/ergochat/irc-go/ircutils"
	"gopkg.in/yaml.v2"

	"github.com/ergochat/minircd/irc/logger"
	"github.com/ergochat/minircd/irc/utils"
)

const (
	defaultMaxReadQ = "16k"
	minReadQBytes   = 512

	// prefix for environment variables that override config values,
	// e.g. MINIRCD__SERVER__NAME=irc.example.net
	envOverridePrefix = "MINIRCD__"
)

// ListenerConfig is the config governing a particular listener (bound address).
type ListenerConfig struct {
	WebSocket bool `yaml:"websocket"`
}

// Config defines the overall configuration.
type Config struct {
	Server struct {
		Name            string
		CreatedAtString string    `yaml:"created-at"`
		CreatedAt       time.Time `yaml:"-"`
		Listeners       map[string]ListenerConfig
		MaxReadQString  string `yaml:"max-readq"`
		MaxReadQBytes   int    `yaml:"-"`
		WebSockets      struct {
			AllowedOrigins       []string `yaml:"allowed-origins"`
			allowedOriginRegexps []*regexp.Regexp
		}
	}

	Debug struct {
		RecoverFromErrors *bool `yaml:"recover-from-errors"`
		recoverFromErrors bool
	}

	Logging []logger.LoggingConfig

	Filename string `yaml:"-"`
}

// LoadRawConfig reads the config file and applies environment overrides,
// without validating or processing the result.
func LoadRawConfig(filename string) (config *Config, err error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config = new(Config)
	if err = yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	for _, envPair := range os.Environ() {
		if _, _, err := mungeFromEnvironment(config, envPair); err != nil {
			return nil, err
		}
	}

	config.Filename = filename
	return config, nil
}

// LoadConfig loads the given YAML configuration file, then validates and processes it.
func LoadConfig(filename string) (config *Config, err error) {
	config, err = LoadRawConfig(filename)
	if err != nil {
		return nil, err
	}
	if err = config.process(); err != nil {
		return nil, err
	}
	return config, nil
}

// process validates the config and fills in the fields derived from the raw values.
func (config *Config) process() (err error) {
	if config.Server.Name == "" {
		return ErrServerNameMissing
	}
	if !ircutils.HostnameIsValid(config.Server.Name) {
		return ErrServerNameNotHostname
	}
	if len(config.Server.Listeners) == 0 {
		return ErrNoListenersDefined
	}

	if config.Server.CreatedAtString == "" {
		config.Server.CreatedAt = time.Now().UTC()
	} else {
		config.Server.CreatedAt, err = time.Parse(time.RFC3339, config.Server.CreatedAtString)
		if err != nil {
			return fmt.Errorf("Could not parse created-at timestamp: %w", err)
		}
	}

	if config.Server.MaxReadQString == "" {
		config.Server.MaxReadQString = defaultMaxReadQ
	}
	maxReadQBytes, err := bytefmt.ToBytes(config.Server.MaxReadQString)
	if err != nil {
		return fmt.Errorf("Could not parse maximum ReadQ size (make sure it only contains whole numbers): %w", err)
	}
	if maxReadQBytes < minReadQBytes {
		return ErrReadQTooSmall
	}
	config.Server.MaxReadQBytes = int(maxReadQBytes)

	config.Server.WebSockets.allowedOriginRegexps = nil
	for _, originGlob := range config.Server.WebSockets.AllowedOrigins {
		originRegexp, err := utils.CompileGlob(originGlob)
		if err != nil {
			return fmt.Errorf("Could not compile allowed websocket origin %s: %w", originGlob, err)
		}
		config.Server.WebSockets.allowedOriginRegexps = append(config.Server.WebSockets.allowedOriginRegexps, originRegexp)
	}

	// RecoverFromErrors defaults to true
	config.Debug.recoverFromErrors = utils.BoolDefaultTrue(config.Debug.RecoverFromErrors)

	for i := range config.Logging {
		if err = config.Logging[i].Process(); err != nil {
			return err
		}
	}

	return nil
}

// mungeFromEnvironment applies one environment variable of the form
// MINIRCD__SECTION__SUBSECTION__KEY=value, where value is parsed as YAML.
// Underscores in path components map to the hyphens used in YAML keys.
func mungeFromEnvironment(config *Config, envPair string) (applied bool, name string, err error) {
	equalIdx := strings.IndexByte(envPair, '=')
	if equalIdx == -1 {
		return false, "", nil
	}
	name, value := envPair[:equalIdx], envPair[equalIdx+1:]
	if !strings.HasPrefix(name, envOverridePrefix) {
		return false, "", nil
	}

	pathComponents := strings.Split(strings.TrimPrefix(name, envOverridePrefix), "__")
	for i, component := range pathComponents {
		pathComponents[i] = strings.ToLower(strings.ReplaceAll(component, "_", "-"))
	}

	field := reflect.ValueOf(config).Elem()
	for _, component := range pathComponents {
		if component == "" || field.Kind() != reflect.Struct {
			return false, name, fmt.Errorf("%w: %s", ErrEnvVarMalformed, name)
		}
		next, found := fieldByYAMLName(field, component)
		if !found {
			return false, name, fmt.Errorf("%w: %s (no such config key)", ErrEnvVarMalformed, name)
		}
		field = next
	}

	if err := yaml.Unmarshal([]byte(value), field.Addr().Interface()); err != nil {
		return false, name, fmt.Errorf("Could not apply %s: %w", name, err)
	}
	return true, name, nil
}

// fieldByYAMLName finds the exported struct field that yaml.v2 would map to key.
func fieldByYAMLName(structValue reflect.Value, key string) (field reflect.Value, found bool) {
	structType := structValue.Type()
	for i := 0; i < structType.NumField(); i++ {
		fieldType := structType.Field(i)
		if fieldType.PkgPath != "" {
			continue
		}
		yamlName := strings.Split(fieldType.Tag.Get("yaml"), ",")[0]
		if yamlName == "-" {
			continue
		}
		if yamlName == "" {
			yamlName = strings.ToLower(fieldType.Name)
		}
		if yamlName == key {
			return structValue.Field(i), true
		}
	}
	return
}
