// Package inputdev lists the input devices under /dev/input/by-id together
// with the vendor:product identifier a profile's device_id expects.
package inputdev

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	evdev "github.com/gvalkov/golang-evdev"
)

// ByIDPath holds stable symlinks to the event nodes.
const ByIDPath = "/dev/input/by-id"

// Device is one input device node.
type Device struct {
	Link    string
	Name    string
	Vendor  uint16
	Product uint16
	// Err is set when the node could not be opened, typically for lack of
	// permission; Name and the identifiers are then zero.
	Err error
}

// ID formats the identifier the way lsusb -d accepts it.
func (d Device) ID() string {
	return fmt.Sprintf("%04x:%04x", d.Vendor, d.Product)
}

// opener opens an event node; replaced in tests.
type opener func(path string) (*Device, error)

func openEvdev(path string) (*Device, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, err
	}
	defer dev.File.Close()
	return &Device{Name: dev.Name, Vendor: dev.Vendor, Product: dev.Product}, nil
}

// List returns every symlink in dir with its device details, sorted by
// link name. Only event nodes can be queried; others are skipped.
func List(dir string) ([]Device, error) {
	return list(dir, openEvdev)
}

func list(dir string, open opener) ([]Device, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var devs []Device
	for _, de := range des {
		info, err := de.Info()
		if err != nil {
			continue
		}
		if ty := info.Mode() & fs.ModeType; ty != fs.ModeSymlink {
			continue
		}
		if !isEventLink(de.Name()) {
			continue
		}
		path := filepath.Join(dir, de.Name())
		d, err := open(path)
		if err != nil {
			devs = append(devs, Device{Link: de.Name(), Err: err})
			continue
		}
		d.Link = de.Name()
		devs = append(devs, *d)
	}
	sort.Slice(devs, func(i, j int) bool { return devs[i].Link < devs[j].Link })
	return devs, nil
}

func isEventLink(name string) bool {
	matched, _ := filepath.Match("*-event-*", name)
	return matched
}
