package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ShayCichocki/loom/internal/exec"
)

// SubprocessCollaborator runs an external command as a collaborator.
// The request is marshalled to JSON and piped to the command's stdin; the
// command writes its artifact content to stdout. Stderr is diagnostic only
// and is included in the error when the command fails.
type SubprocessCollaborator struct {
	runner  exec.CommandRunner
	command string
}

// NewSubprocessCollaborator creates a collaborator backed by a shell command.
func NewSubprocessCollaborator(runner exec.CommandRunner, command string) *SubprocessCollaborator {
	return &SubprocessCollaborator{runner: runner, command: command}
}

// Run executes the command with the request on stdin and returns stdout.
func (s *SubprocessCollaborator) Run(ctx context.Context, req Request) ([]byte, error) {
	input, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal collaborator request: %w", err)
	}

	stdout, stderr, err := s.runner.RunShell(ctx, req.WorkspaceDir, input, s.command)
	if err != nil {
		msg := strings.TrimSpace(string(stderr))
		if msg == "" {
			return nil, fmt.Errorf("collaborator %q: %w", s.command, err)
		}
		return nil, fmt.Errorf("collaborator %q: %w: %s", s.command, err, msg)
	}

	return stdout, nil
}

// Verify SubprocessCollaborator implements Collaborator at compile time.
var _ Collaborator = (*SubprocessCollaborator)(nil)
