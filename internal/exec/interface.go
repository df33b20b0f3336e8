// Package exec provides an interface for command execution.
package exec

import (
	"context"
)

// CommandRunner defines the interface for running external commands.
// This abstraction allows mocking collaborator processes in tests.
type CommandRunner interface {
	// Run executes a command with input piped to stdin and returns stdout
	// and stderr separately. Collaborator processes write their artifact
	// payload to stdout; stderr carries diagnostics. The working directory
	// is set to workDir if non-empty.
	Run(ctx context.Context, workDir string, input []byte, name string, args ...string) (stdout, stderr []byte, err error)

	// RunShell executes a shell command through "sh -c".
	// This is a convenience method for running complex shell commands.
	RunShell(ctx context.Context, workDir string, input []byte, command string) (stdout, stderr []byte, err error)
}
