package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ExecContext executes a VCS command with timeout and context support.
// Stderr is folded into the returned error so callers see what the tool
// actually complained about.
//
// Example:
//
//	output, err := ExecContext(ctx, 30*time.Second, repoRoot, "git", "status", "--porcelain")
func ExecContext(ctx context.Context, timeout time.Duration, workDir string, name string, args ...string) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s %s", ErrTimeout, name, strings.Join(args, " "))
		}
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
		}
		return nil, err
	}

	return stdout.Bytes(), nil
}

// ExecSimple is ExecContext with a background context and a 30 second
// timeout.
func ExecSimple(workDir string, name string, args ...string) ([]byte, error) {
	return ExecContext(context.Background(), 30*time.Second, workDir, name, args...)
}

// ParseLines splits command output into non-empty trimmed lines.
func ParseLines(output []byte) []string {
	if len(output) == 0 {
		return nil
	}

	lines := strings.Split(string(output), "\n")
	result := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			result = append(result, line)
		}
	}

	return result
}

// TrimOutput trims whitespace and trailing newlines from command output.
func TrimOutput(output []byte) string {
	return strings.TrimSpace(string(output))
}

// BinaryAvailable reports whether the named VCS binary is in PATH.
func BinaryAvailable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
