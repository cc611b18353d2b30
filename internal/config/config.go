package config

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/leshachaplin/dudkstats/internal/apperror"
	"github.com/leshachaplin/dudkstats/internal/remote"
)

const (
	EnvHost       = "DUDK_SERVER_HOST"
	EnvPort       = "DUDK_SERVER_PORT"
	EnvUser       = "DUDK_SERVER_USER"
	EnvPath       = "DUDK_SERVER_PATH"
	EnvKey        = "DUDK_SERVER_KEY"
	EnvKnownHosts = "DUDK_SERVER_KNOWN_HOSTS"
	EnvTimeout    = "DUDK_SERVER_TIMEOUT"
	EnvLogLevel   = "LOG_LEVEL"

	DefaultOutputPath = "stats.csv"
	defaultKnownHosts = "~/.ssh/known_hosts"
	defaultTimeout    = 30 * time.Second
	defaultLogLevel   = "INFO"
)

var required = []string{EnvHost, EnvPort, EnvUser, EnvPath, EnvKey}

// Config is the main config for the application
type Config struct {
	LogLevel   string
	OutputPath string
	Remote     remote.Config
}

type LookupFn func(key string) (string, bool)

// Load reads the process environment.
func Load() (Config, error) {
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from lookup. Every missing required variable is
// reported in a single error, one detail line per variable.
func FromLookup(lookup LookupFn) (Config, error) {
	var missing []string
	for _, key := range required {
		if _, ok := lookup(key); !ok {
			missing = append(missing, fmt.Sprintf("'%s' is not defined and is required", key))
		}
	}
	if len(missing) > 0 {
		return Config{}, apperror.New("missing required environment", apperror.ExitConfig).
			WithDetails(missing...)
	}

	get := func(key string) string {
		v, _ := lookup(key)
		return v
	}

	port, err := parsePort(get(EnvPort))
	if err != nil {
		return Config{}, invalid(EnvPort, err)
	}

	remotePath := get(EnvPath)
	if !path.IsAbs(remotePath) {
		return Config{}, invalid(EnvPath, fmt.Errorf("%q is not an absolute path", remotePath))
	}

	keyPath, err := expandHome(get(EnvKey))
	if err != nil {
		return Config{}, invalid(EnvKey, err)
	}

	knownHosts := defaultKnownHosts
	if v, ok := lookup(EnvKnownHosts); ok {
		knownHosts = v
	}
	if knownHosts, err = expandHome(knownHosts); err != nil {
		return Config{}, invalid(EnvKnownHosts, err)
	}

	timeout := defaultTimeout
	if v, ok := lookup(EnvTimeout); ok && v != "" {
		if timeout, err = time.ParseDuration(v); err != nil || timeout <= 0 {
			return Config{}, invalid(EnvTimeout, fmt.Errorf("%q is not a positive duration", v))
		}
	}

	logLevel := defaultLogLevel
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		logLevel = strings.ToUpper(v)
	}

	return Config{
		LogLevel:   logLevel,
		OutputPath: DefaultOutputPath,
		Remote: remote.Config{
			Host:           get(EnvHost),
			Port:           port,
			User:           get(EnvUser),
			KeyPath:        keyPath,
			Path:           remotePath,
			KnownHostsPath: knownHosts,
			DialTimeout:    timeout,
		},
	}, nil
}

func parsePort(v string) (uint16, error) {
	p, err := strconv.ParseUint(v, 10, 16)
	if err != nil || p == 0 {
		return 0, fmt.Errorf("%q is not a port number between 1 and 65535", v)
	}
	return uint16(p), nil
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", p, err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

func invalid(key string, err error) error {
	return apperror.New(fmt.Sprintf("'%s' is invalid: %s", key, err), apperror.ExitConfig)
}
