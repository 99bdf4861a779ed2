// Package format wraps the external source formatter. The generator never
// formats code itself; it hands each file to a Formatter before the writer
// compares it with what is on disk.
package format

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/mark3labs/swagger2ts/internal/errs"
)

// Formatter returns the pretty-printed form of content. path is the planned
// file path and lets the formatter pick a parser.
type Formatter interface {
	Format(path, content string) (string, error)
}

// Noop returns content unchanged.
type Noop struct{}

func (Noop) Format(_, content string) (string, error) { return content, nil }

// Command pipes content through an external program. The file path is
// appended to Args, so the default prettier invocation ends in
// "--stdin-filepath <path>".
type Command struct {
	Name    string
	Args    []string
	Timeout time.Duration
}

// Prettier returns the default formatter command.
func Prettier() Command {
	return Command{Name: "prettier", Args: []string{"--stdin-filepath"}, Timeout: 30 * time.Second}
}

func (c Command) Format(path, content string) (string, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	args := append(append([]string(nil), c.Args...), path)
	cmd := exec.CommandContext(ctx, c.Name, args...)
	cmd.Stdin = strings.NewReader(content)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := "format: " + c.Name + " failed"
		if s := strings.TrimSpace(stderr.String()); s != "" {
			msg += ": " + firstLine(s)
		}
		return "", errs.Wrap(errs.FormatError, err, path, msg)
	}
	return stdout.String(), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
