package hw

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/chzchzchz/wacom-profile/internal/logging"
)

// Tools names the external programs. Empty fields fall back to the defaults.
type Tools struct {
	Lsusb     string
	Find      string
	Xsetwacom string
}

// DefaultTools are looked up on PATH.
var DefaultTools = Tools{
	Lsusb:     "lsusb",
	Find:      "find",
	Xsetwacom: "xsetwacom",
}

func (t Tools) withDefaults() Tools {
	if t.Lsusb == "" {
		t.Lsusb = DefaultTools.Lsusb
	}
	if t.Find == "" {
		t.Find = DefaultTools.Find
	}
	if t.Xsetwacom == "" {
		t.Xsetwacom = DefaultTools.Xsetwacom
	}
	return t
}

// ToolMissingError reports an external program that is not on PATH.
type ToolMissingError struct {
	Tool string
	Err  error
}

func (e *ToolMissingError) Error() string {
	return fmt.Sprintf("required command %q not found: %v", e.Tool, e.Err)
}

func (e *ToolMissingError) Unwrap() error {
	return e.Err
}

// CommandError is a failed external invocation.
type CommandError struct {
	Argv     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command '%s' failed", strings.Join(e.Argv, " "))
	if e.ExitCode > 0 {
		msg += fmt.Sprintf(" with exit code %d", e.ExitCode)
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// execCommandContext is a variable to allow mocking in tests
var execCommandContext = exec.CommandContext

// Exec implements Hardware and StatusReader with real processes and files.
type Exec struct {
	tools Tools
	log   *logging.Logger
}

// NewExec returns an Exec running tools. The logger receives a debug trace
// of every invocation and its output.
func NewExec(tools Tools, log *logging.Logger) *Exec {
	return &Exec{tools: tools.withDefaults(), log: log}
}

// Check verifies every external tool resolves on PATH. It spawns nothing.
func (e *Exec) Check() error {
	for _, tool := range []string{e.tools.Lsusb, e.tools.Find, e.tools.Xsetwacom} {
		if _, err := exec.LookPath(tool); err != nil {
			return &ToolMissingError{Tool: tool, Err: err}
		}
	}
	return nil
}

func (e *Exec) run(ctx context.Context, name string, args ...string) (string, error) {
	argv := append([]string{name}, args...)
	e.log.Debug("Running: %s", strings.Join(argv, " "))

	cmd := execCommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		cerr := &CommandError{Argv: argv, Stderr: strings.TrimSpace(stderr.String()), Err: err}
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			cerr.ExitCode = exitError.ExitCode()
		}
		return "", cerr
	}

	out := stdout.String()
	if out != "" {
		e.log.Debug("Output: %s", strings.TrimRight(out, "\n"))
	}
	return out, nil
}

func (e *Exec) Enumerate(ctx context.Context, deviceID string) (string, error) {
	return e.run(ctx, e.tools.Lsusb, "-d", deviceID)
}

func (e *Exec) Search(ctx context.Context, root, name string) (string, error) {
	return e.run(ctx, e.tools.Find, root, "-name", name)
}

func (e *Exec) ListDevices(ctx context.Context) (string, error) {
	return e.run(ctx, e.tools.Xsetwacom, "--list", "devices")
}

func (e *Exec) ControlSet(ctx context.Context, device string, args []string) (string, error) {
	return e.run(ctx, e.tools.Xsetwacom, append([]string{"--set", device}, args...)...)
}

// ReadStatus returns the whitespace trimmed content of path.
func (e *Exec) ReadStatus(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
