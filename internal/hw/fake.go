package hw

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// Call is one recorded invocation on a Fake.
type Call struct {
	Tool string
	Args []string
}

// Fake is a scripted in-memory Hardware and StatusReader. It is safe for
// concurrent use so tests can inspect it while a loop is running.
type Fake struct {
	mu sync.Mutex

	EnumerateOutput string
	EnumerateErr    error
	SearchOutput    string
	SearchErr       error
	DevicesOutput   string
	DevicesErr      error
	// ControlErrs fails ControlSet when the first argument matches a key.
	ControlErrs map[string]error

	// Statuses are returned by ReadStatus one after another. The last one
	// repeats forever unless Lost is set, in which case reads past the end
	// fail as if the file had been removed.
	Statuses []string
	Lost     bool

	calls []Call
	reads int
}

func (f *Fake) record(tool string, args ...string) {
	f.calls = append(f.calls, Call{Tool: tool, Args: append([]string(nil), args...)})
}

func (f *Fake) Enumerate(_ context.Context, deviceID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("lsusb", "-d", deviceID)
	return f.EnumerateOutput, f.EnumerateErr
}

func (f *Fake) Search(_ context.Context, root, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("find", root, "-name", name)
	return f.SearchOutput, f.SearchErr
}

func (f *Fake) ListDevices(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("xsetwacom", "--list", "devices")
	return f.DevicesOutput, f.DevicesErr
}

func (f *Fake) ControlSet(_ context.Context, device string, args []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("xsetwacom", append([]string{"--set", device}, args...)...)
	if len(args) > 0 {
		if err := f.ControlErrs[args[0]]; err != nil {
			return "", err
		}
	}
	return "", nil
}

func (f *Fake) ReadStatus(path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.reads
	f.reads++
	if len(f.Statuses) == 0 {
		return "", &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	if i >= len(f.Statuses) {
		if f.Lost {
			return "", &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
		}
		i = len(f.Statuses) - 1
	}
	return f.Statuses[i], nil
}

// Calls returns every recorded invocation in order.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// ControlCalls returns the argument lists given to ControlSet, without the
// leading "--set <device>".
func (f *Fake) ControlCalls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out [][]string
	for _, c := range f.calls {
		if len(c.Args) >= 2 && c.Args[0] == "--set" {
			out = append(out, c.Args[2:])
		}
	}
	return out
}

// Reads returns how many times ReadStatus was called.
func (f *Fake) Reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

func (c Call) String() string {
	return fmt.Sprintf("%s %v", c.Tool, c.Args)
}
