// Package ssh implements rigrun.Environment over an SSH connection to the
// target device. Each command runs in its own session; file transfer uses
// SFTP. Host-key prompting is disabled: deploy targets are throwaway lab
// devices reached by address, and the tool must never block on an
// interactive prompt.
package ssh
