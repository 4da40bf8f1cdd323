// Package config assembles runtime configuration in layers: built-in
// defaults, then the YAML config file, then TRAMMEL_* environment
// variables, then command-line flags. Later layers win per value.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/atomicstack/trammel/internal/app"
	"github.com/atomicstack/trammel/internal/model"
	"github.com/atomicstack/trammel/internal/transmission"
	"github.com/atomicstack/trammel/internal/ui"
)

// Config captures everything one run of the client needs.
type Config struct {
	App     app.Config
	Logging Logging

	// ShowVersion short-circuits startup to print the build version.
	ShowVersion bool

	// Rest holds positional arguments left after flag parsing.
	Rest []string

	Flags map[string]string
	Args  []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

const (
	envHost     = "TRAMMEL_HOST"
	envPort     = "TRAMMEL_PORT"
	envPath     = "TRAMMEL_PATH"
	envSSL      = "TRAMMEL_SSL"
	envUsername = "TRAMMEL_USERNAME"
	envPassword = "TRAMMEL_PASSWORD"
	envConfig   = "TRAMMEL_CONFIG"
	envLogFile  = "TRAMMEL_LOG_FILE"
	envTrace    = "TRAMMEL_TRACE"

	// envAuth matches the original client's user:pass shorthand.
	envAuth = "TR_AUTH"
)

// fileConfig is the YAML schema of ~/.config/trammel/config.yaml. Pointer
// fields distinguish "absent" from explicit zero values.
type fileConfig struct {
	Connection struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Path     string `yaml:"path"`
		SSL      *bool  `yaml:"ssl"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"connection"`
	Polling struct {
		Active  string `yaml:"active"`
		Passive string `yaml:"passive"`
	} `yaml:"polling"`
	UI struct {
		Sort    string `yaml:"sort"`
		Reverse *bool  `yaml:"reverse"`
		Filter  string `yaml:"filter"`
		Invert  *bool  `yaml:"invert"`
	} `yaml:"ui"`
	Keys map[string]string `yaml:"keys"`
	Log  struct {
		File  string `yaml:"file"`
		Trace *bool  `yaml:"trace"`
	} `yaml:"log"`
}

// LoadArgs assembles configuration from the given CLI arguments and
// environment. It is pure; MustLoad wraps it for the command handlers.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	fs := flag.NewFlagSet("trammel", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	var connect, configPath, logFile string
	var ssl, trace, showVersion bool
	var timeout, active, passive time.Duration

	fs.StringVar(&connect, "connect", "", "daemon endpoint as [user:pass@]host[:port][/path]")
	fs.StringVar(&connect, "c", "", "shorthand for --connect")
	fs.StringVar(&configPath, "config", "", "path to the YAML config file")
	fs.StringVar(&configPath, "f", "", "shorthand for --config")
	fs.BoolVar(&ssl, "ssl", false, "connect over https")
	fs.DurationVar(&timeout, "timeout", 0, "per-request timeout")
	fs.DurationVar(&active, "active-interval", 0, "poll interval while focused")
	fs.DurationVar(&passive, "passive-interval", 0, "poll interval while blurred")
	fs.StringVar(&logFile, "log-file", "", "path to the log file")
	fs.BoolVar(&trace, "trace", false, "enable verbose JSON trace logging")
	fs.BoolVar(&showVersion, "version", false, "print the version and exit")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg := defaults()

	// layer 1: the config file
	path, explicit := configPath, set["config"] || set["f"]
	if !explicit {
		if v, ok := env[envConfig]; ok && v != "" {
			path, explicit = v, true
		} else {
			path = defaultConfigPath(env)
		}
	}
	fc, err := readFile(path, explicit)
	if err != nil {
		return Config{}, err
	}
	if err := applyFile(&cfg, fc); err != nil {
		return Config{}, err
	}

	// layer 2: the environment
	if err := applyEnv(&cfg, env); err != nil {
		return Config{}, err
	}

	// layer 3: flags
	if connect != "" {
		if err := applyConnect(&cfg.App.Endpoint, connect); err != nil {
			return Config{}, err
		}
	}
	if set["ssl"] {
		cfg.App.Endpoint.SSL = ssl
	}
	if set["timeout"] {
		cfg.App.Timeout = timeout
	}
	if set["active-interval"] {
		cfg.App.ActiveInterval = active
	}
	if set["passive-interval"] {
		cfg.App.PassiveInterval = passive
	}
	if set["log-file"] {
		cfg.Logging.FilePath = logFile
	}
	if set["trace"] {
		cfg.Logging.Trace = trace
	}
	cfg.ShowVersion = showVersion

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	cfg.Rest = append([]string(nil), fs.Args()...)
	cfg.Args = scrubArgs(args)
	cfg.Flags = map[string]string{
		"connect":          stripCredentials(connect),
		"config":           path,
		"ssl":              strconv.FormatBool(cfg.App.Endpoint.SSL),
		"timeout":          cfg.App.Timeout.String(),
		"active-interval":  cfg.App.ActiveInterval.String(),
		"passive-interval": cfg.App.PassiveInterval.String(),
		"log-file":         cfg.Logging.FilePath,
		"trace":            strconv.FormatBool(cfg.Logging.Trace),
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		App: app.Config{
			Endpoint: transmission.Endpoint{
				Host: "localhost",
				Port: transmission.DefaultPort,
				Path: transmission.DefaultPath,
			},
			Timeout: transmission.DefaultTimeout,
			Sort:    model.Sort{Key: model.SortByName},
		},
	}
}

// defaultConfigPath resolves ~/.config/trammel/config.yaml from the supplied
// environment so tests can redirect it.
func defaultConfigPath(env map[string]string) string {
	base := env["XDG_CONFIG_HOME"]
	if base == "" {
		home := env["HOME"]
		if home == "" {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "trammel", "config.yaml")
}

// readFile loads the YAML layer. A missing default file is fine; a missing
// explicitly-requested file is an error.
func readFile(path string, explicit bool) (fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return fc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return fc, nil
		}
		return fc, fmt.Errorf("config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("config file %s: %w", path, err)
	}
	return fc, nil
}

func applyFile(cfg *Config, fc fileConfig) error {
	if fc.Connection.Host != "" {
		cfg.App.Endpoint.Host = fc.Connection.Host
	}
	if fc.Connection.Port != 0 {
		cfg.App.Endpoint.Port = fc.Connection.Port
	}
	if fc.Connection.Path != "" {
		cfg.App.Endpoint.Path = fc.Connection.Path
	}
	if fc.Connection.SSL != nil {
		cfg.App.Endpoint.SSL = *fc.Connection.SSL
	}
	if fc.Connection.Username != "" {
		cfg.App.Endpoint.Username = fc.Connection.Username
	}
	if fc.Connection.Password != "" {
		cfg.App.Endpoint.Password = fc.Connection.Password
	}

	if fc.Polling.Active != "" {
		d, err := time.ParseDuration(fc.Polling.Active)
		if err != nil {
			return fmt.Errorf("config polling.active: %w", err)
		}
		cfg.App.ActiveInterval = d
	}
	if fc.Polling.Passive != "" {
		d, err := time.ParseDuration(fc.Polling.Passive)
		if err != nil {
			return fmt.Errorf("config polling.passive: %w", err)
		}
		cfg.App.PassiveInterval = d
	}

	if fc.UI.Sort != "" {
		key, err := model.ParseSortKey(fc.UI.Sort)
		if err != nil {
			return fmt.Errorf("config ui.sort: %w", err)
		}
		cfg.App.Sort.Key = key
	}
	if fc.UI.Reverse != nil {
		cfg.App.Sort.Reverse = *fc.UI.Reverse
	}
	if fc.UI.Filter != "" {
		mode, err := model.ParseFilterMode(fc.UI.Filter)
		if err != nil {
			return fmt.Errorf("config ui.filter: %w", err)
		}
		cfg.App.Filter.Mode = mode
	}
	if fc.UI.Invert != nil {
		cfg.App.Filter.Invert = *fc.UI.Invert
	}

	if len(fc.Keys) > 0 {
		cfg.App.Keys = fc.Keys
	}
	if fc.Log.File != "" {
		cfg.Logging.FilePath = fc.Log.File
	}
	if fc.Log.Trace != nil {
		cfg.Logging.Trace = *fc.Log.Trace
	}
	return nil
}

func applyEnv(cfg *Config, env map[string]string) error {
	if v, ok := env[envAuth]; ok && v != "" {
		user, pass, found := strings.Cut(v, ":")
		if !found {
			return fmt.Errorf("%s must be user:password", envAuth)
		}
		cfg.App.Endpoint.Username = user
		cfg.App.Endpoint.Password = pass
	}
	if v, ok := env[envHost]; ok && v != "" {
		cfg.App.Endpoint.Host = v
	}
	if v, ok := env[envPort]; ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envPort, err)
		}
		cfg.App.Endpoint.Port = port
	}
	if v, ok := env[envPath]; ok && v != "" {
		cfg.App.Endpoint.Path = v
	}
	if v, ok := env[envSSL]; ok && v != "" {
		ssl, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envSSL, err)
		}
		cfg.App.Endpoint.SSL = ssl
	}
	if v, ok := env[envUsername]; ok && v != "" {
		cfg.App.Endpoint.Username = v
	}
	if v, ok := env[envPassword]; ok && v != "" {
		cfg.App.Endpoint.Password = v
	}
	if v, ok := env[envLogFile]; ok && v != "" {
		cfg.Logging.FilePath = v
	}
	if v, ok := env[envTrace]; ok && v != "" {
		trace, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envTrace, err)
		}
		cfg.Logging.Trace = trace
	}
	return nil
}

// applyConnect folds a [user:pass@]host[:port][/path] connect string onto
// the endpoint. Only the parts the string carries are replaced.
func applyConnect(e *transmission.Endpoint, s string) error {
	rest := s
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		user, pass, _ := strings.Cut(rest[:at], ":")
		if user == "" {
			return fmt.Errorf("connect string %q: empty username", s)
		}
		e.Username = user
		e.Password = pass
		rest = rest[at+1:]
	}
	if slash := strings.Index(rest, "/"); slash >= 0 {
		e.Path = rest[slash:]
		rest = rest[:slash]
	}
	host, port, err := splitHostPort(rest)
	if err != nil {
		return fmt.Errorf("connect string %q: %w", s, err)
	}
	e.Host = host
	if port != 0 {
		e.Port = port
	}
	return nil
}

// splitHostPort understands plain hosts, host:port, bracketed IPv6 with and
// without a port, and bare IPv6 addresses.
func splitHostPort(hostport string) (string, int, error) {
	if hostport == "" {
		return "", 0, errors.New("empty host")
	}
	if strings.HasPrefix(hostport, "[") {
		if host, portText, err := net.SplitHostPort(hostport); err == nil {
			port, err := parsePort(portText)
			return host, port, err
		}
		return strings.Trim(hostport, "[]"), 0, nil
	}
	switch strings.Count(hostport, ":") {
	case 0:
		return hostport, 0, nil
	case 1:
		host, portText, err := net.SplitHostPort(hostport)
		if err != nil {
			return "", 0, err
		}
		port, err := parsePort(portText)
		return host, port, err
	default:
		// a bare IPv6 address carries no port
		return hostport, 0, nil
	}
}

func parsePort(text string) (int, error) {
	port, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("port %q is not a number", text)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range", port)
	}
	return port, nil
}

func validate(cfg Config) error {
	if cfg.App.Endpoint.Host == "" {
		return errors.New("no daemon host configured")
	}
	if p := cfg.App.Endpoint.Port; p < 1 || p > 65535 {
		return fmt.Errorf("port %d out of range", p)
	}
	if cfg.App.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive (got %s)", cfg.App.Timeout)
	}
	if cfg.App.ActiveInterval < 0 {
		return fmt.Errorf("active-interval cannot be negative (got %s)", cfg.App.ActiveInterval)
	}
	if cfg.App.PassiveInterval < 0 {
		return fmt.Errorf("passive-interval cannot be negative (got %s)", cfg.App.PassiveInterval)
	}
	// surface key override typos here rather than as dead bindings later
	keys := ui.DefaultKeyMap()
	if err := keys.Apply(cfg.App.Keys); err != nil {
		return err
	}
	return nil
}

// stripCredentials removes the user:pass@ prefix so connect strings can go
// into the trace log.
func stripCredentials(connect string) string {
	if at := strings.LastIndex(connect, "@"); at >= 0 {
		return connect[at+1:]
	}
	return connect
}

// scrubArgs masks everything before an @ in each argument. Connect strings
// are the only place credentials can appear on the command line, and argv
// goes into the startup trace.
func scrubArgs(args []string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		if at := strings.LastIndex(arg, "@"); at >= 0 {
			arg = "***@" + arg[at+1:]
		}
		out[i] = arg
	}
	return out
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

// MustLoad returns configuration for the given arguments or exits.
func MustLoad(args []string) Config {
	cfg, err := LoadArgs(args, os.Environ())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}
