// Package locate finds the tablet: its USB bus, the sysfs file exposing the
// mode LED, and the pad device name understood by the control utility.
package locate

import (
	"bufio"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/chzchzchz/wacom-profile/internal/hw"
	"github.com/chzchzchz/wacom-profile/internal/logging"
)

// StatusFile is the name of the LED select attribute.
const StatusFile = "status_led0_select"

// SysfsUSBRoot is the directory holding one usbN entry per bus.
const SysfsUSBRoot = "/sys/bus/usb/devices"

var (
	busPattern = regexp.MustCompile(`^Bus ([0-9]+)`)
	padPattern = regexp.MustCompile(`^([A-Za-z0-9() ]+)\t.*\ttype: PAD`)
)

// NotFoundError means the tablet or one of its parts could not be found.
type NotFoundError struct {
	What string
	Err  error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.What, e.Err)
	}
	return e.What
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// Handle addresses the tablet for the rest of the process lifetime.
type Handle struct {
	Bus        int
	StatusPath string
	// Name is the pad device name passed to the control utility.
	Name string
}

// Locator resolves device identifiers through external tools.
type Locator struct {
	hw  hw.Hardware
	log *logging.Logger
}

func New(hardware hw.Hardware, log *logging.Logger) *Locator {
	return &Locator{hw: hardware, log: log}
}

// Bus returns the USB bus number of the device with identifier deviceID.
func (l *Locator) Bus(ctx context.Context, deviceID string) (int, error) {
	out, err := l.hw.Enumerate(ctx, deviceID)
	if err != nil {
		return 0, &NotFoundError{What: fmt.Sprintf("Unable to find USB device %s", deviceID), Err: err}
	}
	m := busPattern.FindStringSubmatch(out)
	if m == nil {
		return 0, &NotFoundError{What: fmt.Sprintf("Unable to find USB device %s", deviceID)}
	}
	bus, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, &NotFoundError{What: fmt.Sprintf("Unable to parse USB bus %q", m[1]), Err: err}
	}
	l.log.Debug("Found device on USB Bus %d", bus)
	return bus, nil
}

// StatusPath returns the LED status file below the sysfs tree of bus.
func (l *Locator) StatusPath(ctx context.Context, bus int) (string, error) {
	root := fmt.Sprintf("%s/usb%d/", SysfsUSBRoot, bus)
	out, err := l.hw.Search(ctx, root, StatusFile)
	if err != nil {
		return "", &NotFoundError{What: fmt.Sprintf("Unable to search %s", root), Err: err}
	}
	path := strings.TrimSpace(out)
	if path == "" {
		return "", &NotFoundError{What: fmt.Sprintf("Unable to find %s file for usb device.", StatusFile)}
	}
	// Only the first match is used.
	if i := strings.IndexByte(path, '\n'); i >= 0 {
		path = strings.TrimSpace(path[:i])
	}
	l.log.Debug("Found LED status file at %s", path)
	return path, nil
}

// ControlName returns the pad device name. When several lines match, the
// last one wins.
func (l *Locator) ControlName(ctx context.Context) (string, error) {
	out, err := l.hw.ListDevices(ctx)
	if err != nil {
		return "", &NotFoundError{What: "Unable to list tablet devices", Err: err}
	}

	name := ""
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		if m := padPattern.FindStringSubmatch(scanner.Text()); m != nil {
			name = strings.TrimSpace(m[1])
		}
	}
	if err := scanner.Err(); err != nil {
		return "", &NotFoundError{What: "Unable to read tablet device list", Err: err}
	}
	if name == "" {
		return "", &NotFoundError{What: "Unable to find tablet PAD device in `xsetwacom --list devices`"}
	}
	l.log.Debug("Found tablet PAD device named %q", name)
	return name, nil
}

// Locate runs Bus, StatusPath and ControlName in order.
func (l *Locator) Locate(ctx context.Context, deviceID string) (*Handle, error) {
	bus, err := l.Bus(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	path, err := l.StatusPath(ctx, bus)
	if err != nil {
		return nil, err
	}
	name, err := l.ControlName(ctx)
	if err != nil {
		return nil, err
	}
	return &Handle{Bus: bus, StatusPath: path, Name: name}, nil
}
