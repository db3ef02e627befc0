package ssh

import (
	"context"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/rigrun/rigrun"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

var _ rigrun.Environment = (*Environment)(nil)

// Environment implements rigrun.Environment over a single SSH connection.
// Each command gets its own session.
type Environment struct {
	config Config
	client *ssh.Client
	mu     sync.Mutex
	active int
	closed bool
}

// New establishes an SSH connection to the device described by c.
func New(c Config) (*Environment, error) {
	c = c.WithDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	clientConfig, err := c.ToClientConfig()
	if err != nil {
		return nil, err
	}

	client, err := ssh.Dial("tcp", c.Addr(), clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to dial ssh at %s: %w", c.Addr(), err)
	}

	return NewFromClient(client, c), nil
}

// NewFromClient wraps an existing SSH client.
func NewFromClient(client *ssh.Client, config Config) *Environment {
	return &Environment{config: config, client: client}
}

// Run executes a command synchronously on the device. A non-zero exit code is
// reported in the Result, not as an error.
func (e *Environment) Run(ctx context.Context, cmd *rigrun.Command) (*rigrun.Result, error) {
	proc, err := e.Start(ctx, cmd)
	if err != nil {
		return nil, err
	}

	defer func() { _ = proc.Close() }()

	if err := proc.Wait(); err != nil {
		return nil, err
	}

	return proc.Result(), nil
}

// Start opens a new SSH session for the command.
func (e *Environment) Start(ctx context.Context, cmd *rigrun.Command) (rigrun.Process, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	e.mu.Lock()

	if e.closed {
		e.mu.Unlock()

		return nil, rigrun.ErrEnvironmentClosed
	}

	e.active++
	e.mu.Unlock()

	session, err := e.client.NewSession()
	if err != nil {
		e.decrementActive()

		return nil, &rigrun.TransportError{Command: cmd, Err: fmt.Errorf("failed to create ssh session: %w", err)}
	}

	proc := &Process{
		env:     e,
		session: session,
		cmd:     cmd,
		done:    make(chan struct{}),
	}

	if err := proc.start(ctx); err != nil {
		_ = session.Close()

		e.decrementActive()

		return nil, err
	}

	return proc, nil
}

// Close closes the underlying SSH connection.
func (e *Environment) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}

	e.closed = true

	if e.client != nil {
		return e.client.Close()
	}

	return nil
}

func (e *Environment) decrementActive() {
	e.mu.Lock()
	e.active--
	e.mu.Unlock()
}

// loadPrivateKeyAuth loads a private key file as an auth method. Returns nil
// if no path is configured.
func loadPrivateKeyAuth(keyPath string) (ssh.AuthMethod, error) {
	if keyPath == "" {
		return nil, nil //nolint:nilnil // no key configured, no auth method
	}

	keyBytes, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key file: %w", err)
	}

	signer, err := ssh.ParsePrivateKey(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key file: %w", err)
	}

	return ssh.PublicKeys(signer), nil
}

// loadAgentAuth connects to the SSH agent. Returns nil when the agent is
// disabled or unavailable.
func loadAgentAuth(useAgent bool) ssh.AuthMethod {
	if !useAgent {
		return nil
	}

	socket := os.Getenv("SSH_AUTH_SOCK")
	if socket == "" {
		return nil
	}

	conn, err := (&net.Dialer{Timeout: 500 * time.Millisecond}).DialContext(context.Background(), "unix", socket)
	if err != nil {
		return nil
	}

	signers, err := agent.NewClient(conn).Signers()
	if err != nil {
		return nil
	}

	return ssh.PublicKeys(signers...)
}
