package ssh

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kevinburke/ssh_config"
	"golang.org/x/crypto/ssh"
)

// Config holds the parameters required to reach the device.
type Config struct {
	Host string // Hostname or IP address
	Port int    // Port number (default 22)
	User string // Username to authenticate as

	// Authentication methods, tried in order: private key, agent, password.
	PrivateKeyPath string
	Password       string
	UseAgent       bool

	Timeout time.Duration // Connection timeout (default 10s)
}

// NewConfig creates a Config with defaults for the given device address.
func NewConfig(host, user string) Config {
	return Config{
		Host:     host,
		User:     user,
		Port:     22,
		UseAgent: true,
		Timeout:  10 * time.Second,
	}
}

// ApplyUserConfig fills unset fields from the user's ssh client configuration
// (~/.ssh/config and the system file), resolving host aliases the same way
// the ssh binary would. Explicit values always win.
func (c Config) ApplyUserConfig() Config {
	alias := c.Host

	if hostName := ssh_config.Get(alias, "HostName"); hostName != "" {
		c.Host = hostName
	}

	if c.User == "" {
		c.User = ssh_config.Get(alias, "User")
	}

	if c.Port == 0 || c.Port == 22 {
		if portStr := ssh_config.Get(alias, "Port"); portStr != "" {
			if port, err := strconv.Atoi(portStr); err == nil {
				c.Port = port
			}
		}
	}

	if c.PrivateKeyPath == "" {
		identity := ssh_config.Get(alias, "IdentityFile")
		if strings.HasPrefix(identity, "~/") {
			identity = filepath.Join(os.Getenv("HOME"), identity[2:])
		}

		// ssh_config reports its built-in default identity even when the user
		// never configured one; only use it if the file exists.
		if identity != "" {
			if _, err := os.Stat(identity); err == nil {
				c.PrivateKeyPath = identity
			}
		}
	}

	return c
}

// WithDefaults fills zero-valued fields.
func (c Config) WithDefaults() Config {
	if c.Port == 0 {
		c.Port = 22
	}

	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}

	return c
}

// Validate ensures required fields are present.
func (c Config) Validate() error {
	if c.Host == "" {
		return errors.New("configuration error: host address cannot be empty")
	}

	if c.User == "" {
		return errors.New("configuration error: user cannot be empty")
	}

	return nil
}

// ToClientConfig converts Config to the underlying ssh.ClientConfig.
// Host keys are deliberately not verified (StrictHostKeyChecking=no
// equivalent): the device fleet regenerates keys on reflash and an
// interactive prompt would wedge unattended runs.
func (c Config) ToClientConfig() (*ssh.ClientConfig, error) {
	config := &ssh.ClientConfig{
		User:            c.User,
		Auth:            []ssh.AuthMethod{},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec
		Timeout:         c.Timeout,
	}

	if keyAuth, err := loadPrivateKeyAuth(c.PrivateKeyPath); err != nil {
		return nil, err
	} else if keyAuth != nil {
		config.Auth = append(config.Auth, keyAuth)
	}

	if agentAuth := loadAgentAuth(c.UseAgent); agentAuth != nil {
		config.Auth = append(config.Auth, agentAuth)
	}

	if c.Password != "" {
		config.Auth = append(config.Auth, ssh.Password(c.Password))
	}

	return config, nil
}

// Addr returns the dial address in host:port form.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
