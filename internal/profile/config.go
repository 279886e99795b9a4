package profile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/ini.v1"
)

const (
	// DefaultsSection holds settings shared by every profile.
	DefaultsSection = "defaults"
	// DeviceIDOption is the vendor:product identifier of the tablet.
	DeviceIDOption = "device_id"
	// DefaultProfile is used when no profile is named.
	DefaultProfile = "defaults"
)

// A trailing backslash is part of the value, not a line continuation.
// Shadows are kept so that a repeated option can be rejected in Parse.
var loadOptions = ini.LoadOptions{
	IgnoreInlineComment:        true,
	IgnoreContinuation:         true,
	PreserveSurroundedQuote:    true,
	AllowShadows:               true,
	AllowDuplicateShadowValues: true,
}

// Configuration is a parsed profile document. It is never written back.
type Configuration struct {
	file *ini.File
}

// Load parses the INI file at path.
func Load(path string) (*Configuration, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ConfigError{Reason: fmt.Sprintf("No such config file: %s", path)}
		}
		return nil, &ConfigError{Reason: fmt.Sprintf("unable to read %s", path), Err: err}
	}
	return Parse(b)
}

// Parse parses an INI document held in memory.
func Parse(data []byte) (*Configuration, error) {
	f, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		return nil, &ConfigError{Reason: "unable to parse config", Err: err}
	}
	for _, sec := range f.Sections() {
		for _, key := range sec.Keys() {
			if len(key.ValueWithShadows()) > 1 {
				return nil, &ConfigError{Reason: fmt.Sprintf("Option %q in section %q already exists", key.Name(), sec.Name())}
			}
		}
	}
	return &Configuration{file: f}, nil
}

// HasSection reports whether a section called name exists.
func (c *Configuration) HasSection(name string) bool {
	_, err := c.file.GetSection(name)
	return err == nil
}

// Option returns one option value of section. Options of the DEFAULT
// section are visible from every other section.
func (c *Configuration) Option(section, option string) (string, bool) {
	sec, err := c.file.GetSection(section)
	if err != nil {
		return "", false
	}
	if sec.HasKey(option) {
		return sec.Key(option).Value(), true
	}
	if def := c.file.Section(ini.DefaultSection); section != ini.DefaultSection && def.HasKey(option) {
		return def.Key(option).Value(), true
	}
	return "", false
}

// Actions returns every option of section in document order, followed by
// the DEFAULT options the section does not override.
func (c *Configuration) Actions(section string) Actions {
	sec, err := c.file.GetSection(section)
	if err != nil {
		return nil
	}
	var actions Actions
	for _, key := range sec.Keys() {
		actions = append(actions, Action{Name: key.Name(), Value: key.Value()})
	}
	if section == ini.DefaultSection {
		return actions
	}
	for _, key := range c.file.Section(ini.DefaultSection).Keys() {
		if !sec.HasKey(key.Name()) {
			actions = append(actions, Action{Name: key.Name(), Value: key.Value()})
		}
	}
	return actions
}

// DeviceID returns the tablet identifier from the defaults section.
func (c *Configuration) DeviceID() (string, error) {
	if !c.HasSection(DefaultsSection) {
		return "", &ConfigError{Reason: "Missing [defaults] section in config file."}
	}
	id, ok := c.Option(DefaultsSection, DeviceIDOption)
	if !ok {
		return "", &ConfigError{Reason: "Missing device_id in [defaults] section."}
	}
	return id, nil
}
