// Package mock provides a testify-backed rigrun.Environment for testing
// orchestration sequences without a device.
package mock

import (
	"context"
	"os"

	"github.com/rigrun/rigrun"
	"github.com/stretchr/testify/mock"
)

// Environment implements a mock rigrun.Environment using testify/mock.
type Environment struct {
	mock.Mock
}

var _ rigrun.Environment = (*Environment)(nil)

// New creates a new mock environment.
func New() *Environment {
	return &Environment{}
}

// Run mocks running a command to completion.
func (m *Environment) Run(ctx context.Context, cmd *rigrun.Command) (*rigrun.Result, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*rigrun.Result), args.Error(1)
}

// Start mocks starting a command asynchronously.
func (m *Environment) Start(ctx context.Context, cmd *rigrun.Command) (rigrun.Process, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(rigrun.Process), args.Error(1)
}

// Upload mocks uploading a file.
func (m *Environment) Upload(ctx context.Context, localPath, remotePath string, opts ...rigrun.FileOption) error {
	// Variadic capture fix for testify
	args := m.Called(ctx, localPath, remotePath, opts)

	return args.Error(0)
}

// Download mocks downloading a file.
func (m *Environment) Download(ctx context.Context, remotePath, localPath string, opts ...rigrun.FileOption) error {
	args := m.Called(ctx, remotePath, localPath, opts)

	return args.Error(0)
}

// Close mocks closing the environment.
func (m *Environment) Close() error {
	args := m.Called()

	return args.Error(0)
}

// Process implements a mock rigrun.Process using testify/mock.
type Process struct {
	mock.Mock
}

var _ rigrun.Process = (*Process)(nil)

// Wait mocks waiting for the process to complete.
func (m *Process) Wait() error {
	args := m.Called()

	return args.Error(0)
}

// Result mocks returning the process result.
func (m *Process) Result() *rigrun.Result {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}

	return args.Get(0).(*rigrun.Result)
}

// Signal mocks sending a signal to the process.
func (m *Process) Signal(sig os.Signal) error {
	args := m.Called(sig)

	return args.Error(0)
}

// Close mocks closing the process.
func (m *Process) Close() error {
	args := m.Called()

	return args.Error(0)
}
