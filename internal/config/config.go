// Package config locates and loads Test.toml and resolves the remote target
// from flags, file defaults and the built-in fallback user.
package config

import (
	"errors"
	"fmt"

	"github.com/google/shlex"
	"github.com/spf13/viper"
)

const (
	// configName is the fixed configuration file name (Test.toml), looked up
	// in the working directory and its parent, in that order.
	configName = "Test"
	configType = "toml"

	// DefaultUser is the fallback remote user when neither flags nor the
	// configuration file provide one.
	DefaultUser = "root"

	// DefaultBasePath is the default remote directory artifacts land in.
	DefaultBasePath = "/tmp"
)

// DefaultSearchPaths lists the directories searched for Test.toml, in order.
var DefaultSearchPaths = []string{".", ".."}

// ErrMissingHostname reports that no remote hostname was supplied by flags or
// configuration. This is a configuration error: nothing has touched the
// device yet.
var ErrMissingHostname = errors.New("missing remote hostname: pass --hostname or set remote.hostname in Test.toml")

// Remote holds the [remote] section of Test.toml.
type Remote struct {
	User      string
	Hostname  string
	ExtraArgs string // default pass-through arguments, shell-style quoting
}

// Target identifies where an artifact is deployed.
type Target struct {
	User     string
	Host     string
	BasePath string
}

// Load searches the given directories (DefaultSearchPaths when none are
// given) for Test.toml and returns its [remote] section. A missing file is
// not an error, only a loss of defaults.
func Load(paths ...string) (Remote, error) {
	if len(paths) == 0 {
		paths = DefaultSearchPaths
	}

	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType(configType)

	for _, p := range paths {
		v.AddConfigPath(p)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return Remote{}, nil
		}

		return Remote{}, fmt.Errorf("read %s.%s: %w", configName, configType, err)
	}

	return Remote{
		User:      v.GetString("remote.user"),
		Hostname:  v.GetString("remote.hostname"),
		ExtraArgs: v.GetString("remote.extra_args"),
	}, nil
}

// Resolve merges explicit flag values over file defaults over the built-in
// fallback user. The hostname has no fallback; its absence is
// ErrMissingHostname.
func Resolve(flagUser, flagHost, basePath string, file Remote) (Target, error) {
	user := firstNonEmpty(flagUser, file.User, DefaultUser)

	host := firstNonEmpty(flagHost, file.Hostname)
	if host == "" {
		return Target{}, ErrMissingHostname
	}

	if basePath == "" {
		basePath = DefaultBasePath
	}

	return Target{User: user, Host: host, BasePath: basePath}, nil
}

// SplitExtraArgs shell-splits the extra_args default from Test.toml.
func SplitExtraArgs(extra string) ([]string, error) {
	if extra == "" {
		return nil, nil
	}

	args, err := shlex.Split(extra)
	if err != nil {
		return nil, fmt.Errorf("parse remote.extra_args: %w", err)
	}

	return args, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
