// Package dispatch programs the tablet driver with the actions of one mode.
package dispatch

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/chzchzchz/wacom-profile/internal/hw"
	"github.com/chzchzchz/wacom-profile/internal/logging"
	"github.com/chzchzchz/wacom-profile/internal/profile"
)

// ActionError is the failure of a single action.
type ActionError struct {
	Action profile.Action
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action %q: %v", e.Action.Name, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// ControlError collects every action that failed during one Apply.
type ControlError struct {
	Device string
	Err    error
}

func (e *ControlError) Error() string {
	errs := multierr.Errors(e.Err)
	parts := make([]string, len(errs))
	for i, err := range errs {
		parts[i] = err.Error()
	}
	return fmt.Sprintf("%d of the actions for %q failed: %s", len(errs), e.Device, strings.Join(parts, "; "))
}

func (e *ControlError) Unwrap() error {
	return e.Err
}

// Failed returns the individual action failures.
func (e *ControlError) Failed() []*ActionError {
	var out []*ActionError
	for _, err := range multierr.Errors(e.Err) {
		if ae, ok := err.(*ActionError); ok {
			out = append(out, ae)
		}
	}
	return out
}

// Args builds the control utility arguments for a. Name and value are split
// on spaces into separate arguments; an empty value adds nothing, leaving
// the name as a bare flag.
func Args(a profile.Action) []string {
	args := split(a.Name)
	return append(args, split(a.Value)...)
}

func split(s string) []string {
	var out []string
	for _, tok := range strings.Split(s, " ") {
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// Dispatcher applies actions to one device.
type Dispatcher struct {
	hw  hw.Hardware
	log *logging.Logger
}

func New(hardware hw.Hardware, log *logging.Logger) *Dispatcher {
	return &Dispatcher{hw: hardware, log: log}
}

// Apply invokes the control utility once per action. A failing action does
// not stop the remaining ones; all failures are returned together as a
// *ControlError once every action was attempted.
func (d *Dispatcher) Apply(ctx context.Context, device string, actions profile.Actions) error {
	var errs error
	for _, a := range actions {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := d.hw.ControlSet(ctx, device, Args(a)); err != nil {
			d.log.Error(err, "Unable to apply %s", a.Name)
			errs = multierr.Append(errs, &ActionError{Action: a, Err: err})
		}
	}
	if errs != nil {
		return &ControlError{Device: device, Err: errs}
	}
	return nil
}
