// Package profile turns a configuration document and a profile name into the
// driver actions to apply for each hardware mode.
package profile

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode is one of the hardware mode slots shown by the tablet LED.
type Mode int

// Modes is the fixed set of slots.
var Modes = []Mode{0, 1, 2, 3}

func (m Mode) String() string {
	return strconv.Itoa(int(m))
}

// ParseMode converts raw status file content into a Mode.
func ParseMode(s string) (Mode, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("mode %q is not a number", s)
	}
	m := Mode(n)
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return 0, fmt.Errorf("mode %d is outside %v", n, Modes)
}

// Action is one driver setting. Both fields may contain spaces; Value may be
// empty.
type Action struct {
	Name  string
	Value string
}

// Actions keeps the order the options appeared in.
type Actions []Action

// ActionTable maps every Mode to its actions. It is total over Modes.
type ActionTable map[Mode]Actions

// For returns the actions of m, empty when none are configured.
func (t ActionTable) For(m Mode) Actions {
	return t[m]
}

// SectionName is the section holding the actions of profile in mode m.
func SectionName(profile string, m Mode) string {
	return fmt.Sprintf("%s:%s", profile, m)
}

// ConfigError is a missing or unusable configuration.
type ConfigError struct {
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Resolve builds the ActionTable of profile. It fails when the defaults
// section or its device_id is missing, or when profile has no section for
// any mode. Options are copied as they are; unknown names are not rejected.
func Resolve(cfg *Configuration, profile string) (ActionTable, error) {
	if _, err := cfg.DeviceID(); err != nil {
		return nil, err
	}

	table := make(ActionTable, len(Modes))
	found := false
	for _, m := range Modes {
		section := SectionName(profile, m)
		if cfg.HasSection(section) {
			found = true
		}
		actions := cfg.Actions(section)
		if actions == nil {
			actions = Actions{}
		}
		table[m] = actions
	}

	if !found {
		return nil, &ConfigError{Reason: fmt.Sprintf("No valid configuration found for profile %q", profile)}
	}
	return table, nil
}
