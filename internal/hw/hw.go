// Package hw is the narrow seam between the watcher and the machine: the
// external enumeration and control tools plus the sysfs status file.
package hw

import "context"

// Hardware runs the external tools the watcher depends on. Each method
// returns the captured standard output.
type Hardware interface {
	// Enumerate lists USB devices matching a vendor:product identifier.
	Enumerate(ctx context.Context, deviceID string) (string, error)
	// Search looks for a file called name below root.
	Search(ctx context.Context, root, name string) (string, error)
	// ListDevices lists the input devices known to the tablet driver.
	ListDevices(ctx context.Context) (string, error)
	// ControlSet applies one driver setting to device.
	ControlSet(ctx context.Context, device string, args []string) (string, error)
}

// StatusReader reads the text content of a status file.
type StatusReader interface {
	ReadStatus(path string) (string, error)
}

// Checker is implemented by Hardware that can verify its tools exist
// without running them.
type Checker interface {
	Check() error
}
