// Package runloop ties the profile, the located tablet, the mode monitor and
// the dispatcher together.
package runloop

import (
	"context"
	"errors"

	"github.com/chzchzchz/wacom-profile/internal/dispatch"
	"github.com/chzchzchz/wacom-profile/internal/hw"
	"github.com/chzchzchz/wacom-profile/internal/locate"
	"github.com/chzchzchz/wacom-profile/internal/logging"
	"github.com/chzchzchz/wacom-profile/internal/monitor"
	"github.com/chzchzchz/wacom-profile/internal/profile"
)

// Config selects what a Loop does.
type Config struct {
	ConfigFile string
	Profile    string
	// Once applies the actions of the current mode and returns instead of
	// watching for transitions.
	Once bool
}

// Loop owns the device handle and action table for one run.
type Loop struct {
	hw     hw.Hardware
	status hw.StatusReader
	log    *logging.Logger
	opts   []monitor.Option
}

// New returns a Loop using hardware for the external tools and status for
// reading the LED file.
func New(hardware hw.Hardware, status hw.StatusReader, log *logging.Logger, opts ...monitor.Option) *Loop {
	return &Loop{hw: hardware, status: status, log: log, opts: opts}
}

// Run resolves the profile, locates the tablet and then applies the actions
// of every mode the tablet switches to. In continuous mode it only returns
// on a fatal error or when ctx is done, returning ctx.Err().
func (l *Loop) Run(ctx context.Context, cfg Config) error {
	log := l.log.Named("RunLoop")

	doc, err := profile.Load(cfg.ConfigFile)
	if err != nil {
		return err
	}
	table, err := profile.Resolve(doc, cfg.Profile)
	if err != nil {
		return err
	}
	deviceID, err := doc.DeviceID()
	if err != nil {
		return err
	}

	if c, ok := l.hw.(hw.Checker); ok {
		if err := c.Check(); err != nil {
			return &locate.NotFoundError{What: "Missing external tool", Err: err}
		}
	}

	handle, err := locate.New(l.hw, l.log.Named("Locator")).Locate(ctx, deviceID)
	if err != nil {
		return err
	}
	log.Debug("Using %q, mode LED at %s", handle.Name, handle.StatusPath)

	mon := monitor.New(handle.StatusPath, l.status, l.log.Named("Monitor"), l.opts...)
	disp := dispatch.New(l.hw, l.log.Named("Dispatch"))

	if cfg.Once {
		cur, err := mon.Current()
		if err != nil {
			return err
		}
		return l.apply(ctx, disp, handle, table, cur)
	}

	reading := monitor.Unknown
	for {
		reading, err = mon.Await(ctx, reading)
		if err != nil {
			return err
		}
		err = l.apply(ctx, disp, handle, table, reading)
		var cerr *dispatch.ControlError
		switch {
		case err == nil:
		case errors.As(err, &cerr):
			log.Error(err, "Mode %s applied with failures", reading)
		default:
			return err
		}
	}
}

func (l *Loop) apply(ctx context.Context, disp *dispatch.Dispatcher, handle *locate.Handle, table profile.ActionTable, r monitor.Reading) error {
	log := l.log.Named("RunLoop")

	mode, err := profile.ParseMode(r.Value())
	if err != nil {
		log.Warn("Ignoring unexpected LED state: %v", err)
		return nil
	}
	actions := table.For(mode)
	log.Debug("Applying %d actions for mode %s", len(actions), mode)
	return disp.Apply(ctx, handle.Name, actions)
}
