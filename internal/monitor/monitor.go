// Package monitor watches the tablet LED status file for mode changes.
//
// The kernel attribute offers no reliable change notification, so the
// monitor polls it. When an fsnotify watch can be placed on the file its
// events wake the poll early; the file content alone decides whether a
// transition happened.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/chzchzchz/wacom-profile/internal/hw"
	"github.com/chzchzchz/wacom-profile/internal/logging"
)

// DefaultInterval is the delay between two reads of an unchanged file.
const DefaultInterval = 250 * time.Millisecond

// Reading is one observed status. The zero Reading is unknown and differs
// from every real reading.
type Reading struct {
	value string
	known bool
}

// Unknown is the reading before anything was observed.
var Unknown = Reading{}

// Seen returns the reading for status content value.
func Seen(value string) Reading {
	return Reading{value: value, known: true}
}

func (r Reading) Known() bool   { return r.known }
func (r Reading) Value() string { return r.value }

func (r Reading) String() string {
	if !r.known {
		return "unknown"
	}
	return r.value
}

// DeviceLostError means the status file could no longer be read, usually
// because the tablet was unplugged.
type DeviceLostError struct {
	Path string
	Err  error
}

func (e *DeviceLostError) Error() string {
	return fmt.Sprintf("LED status file %s went away: %v", e.Path, e.Err)
}

func (e *DeviceLostError) Unwrap() error {
	return e.Err
}

// Monitor polls one status file.
type Monitor struct {
	path     string
	reader   hw.StatusReader
	log      *logging.Logger
	interval time.Duration
	watch    bool
}

type Option func(*Monitor)

// WithInterval sets the poll interval.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) { m.interval = d }
}

// WithWatch enables fsnotify wakeups.
func WithWatch(enabled bool) Option {
	return func(m *Monitor) { m.watch = enabled }
}

func New(path string, reader hw.StatusReader, log *logging.Logger, opts ...Option) *Monitor {
	m := &Monitor{
		path:     path,
		reader:   reader,
		log:      log,
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Current reads the status file once.
func (m *Monitor) Current() (Reading, error) {
	v, err := m.reader.ReadStatus(m.path)
	if err != nil {
		return Unknown, &DeviceLostError{Path: m.path, Err: err}
	}
	return Seen(v), nil
}

// Await blocks until the status differs from prev and returns the new
// reading. An unknown prev returns the current status without waiting.
// There is no deadline; only ctx ends the wait.
func (m *Monitor) Await(ctx context.Context, prev Reading) (Reading, error) {
	var wake <-chan struct{}
	if prev.Known() && m.watch {
		w, stop := m.subscribe()
		defer stop()
		wake = w
	}

	cur, err := m.Current()
	if err != nil {
		return Unknown, err
	}
	if cur != prev {
		m.changed(prev, cur)
		return cur, nil
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return Unknown, ctx.Err()
		case <-ticker.C:
		case <-wake:
		}

		cur, err = m.Current()
		if err != nil {
			return Unknown, err
		}
		if cur != prev {
			m.changed(prev, cur)
			return cur, nil
		}
	}
}

func (m *Monitor) changed(prev, cur Reading) {
	m.log.Debug("Changed mode %s -> %s", prev, cur)
}

// subscribe returns a channel signalled on every fsnotify event for the
// status file. The channel is nil when no watch could be placed.
func (m *Monitor) subscribe() (<-chan struct{}, func()) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		m.log.Debug("fsnotify unavailable, polling only: %v", err)
		return nil, func() {}
	}
	if err := watcher.Add(m.path); err != nil {
		m.log.Debug("Unable to watch %s, polling only: %v", m.path, err)
		watcher.Close()
		return nil, func() {}
	}

	wake := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case _, ok := <-watcher.Events:
				if !ok {
					return
				}
				select {
				case wake <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				m.log.Debug("Watch error on %s: %v", m.path, err)
			}
		}
	}()

	return wake, func() {
		watcher.Close()
		<-done
	}
}
