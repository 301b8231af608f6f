package keyboard

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/srg/blekbd/internal/gatt"
	"github.com/srg/blekbd/internal/hid"
	"github.com/srg/blekbd/internal/loop"
)

// Default timings of the demonstration key.
const (
	DefaultPeriod       = 5 * time.Second
	DefaultReleaseDelay = 500 * time.Millisecond
)

// Timer is a stoppable timer handle.
type Timer interface {
	Stop() bool
}

// Timers arms callbacks that run on the main loop.
type Timers interface {
	Every(d time.Duration, fn func()) Timer
	AfterFunc(d time.Duration, fn func()) Timer
}

type loopTimers struct{ l *loop.Loop }

func (t loopTimers) Every(d time.Duration, fn func()) Timer     { return t.l.Every(d, fn) }
func (t loopTimers) AfterFunc(d time.Duration, fn func()) Timer { return t.l.AfterFunc(d, fn) }

// LoopTimers adapts a main loop to Timers.
func LoopTimers(l *loop.Loop) Timers {
	return loopTimers{l: l}
}

// Scheduler periodically types a key on the input report characteristic
// while a host is subscribed: a press report, then a release after ReleaseDelay.
type Scheduler struct {
	Period       time.Duration
	ReleaseDelay time.Duration
	Key          hid.InputReport

	report *gatt.Characteristic
	timers Timers
	logger *logrus.Logger

	ticker Timer
	text   []hid.InputReport
	pos    int
	onSent func(hid.InputReport)
}

// NewScheduler creates a stopped scheduler typing "a" with default timings.
func NewScheduler(report *gatt.Characteristic, timers Timers, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Scheduler{
		Period:       DefaultPeriod,
		ReleaseDelay: DefaultReleaseDelay,
		Key:          hid.KeyPress(hid.UsageA),
		report:       report,
		timers:       timers,
		logger:       logger,
	}
}

// OnSent registers a callback invoked after every emitted report.
func (s *Scheduler) OnSent(fn func(hid.InputReport)) { s.onSent = fn }

// TypeText replaces the fixed key with text: each tick types the next
// character, wrapping around at the end. Empty text restores the fixed key.
func (s *Scheduler) TypeText(text string) error {
	var reports []hid.InputReport
	for _, r := range text {
		rep, err := hid.ReportForRune(r)
		if err != nil {
			return fmt.Errorf("cannot type %q: %w", text, err)
		}
		reports = append(reports, rep)
	}
	s.text = reports
	s.pos = 0
	return nil
}

// Start arms the periodic timer. Starting a running scheduler is a no-op.
func (s *Scheduler) Start() {
	if s.ticker != nil {
		return
	}
	s.ticker = s.timers.Every(s.Period, s.Tick)
	s.logger.WithFields(logrus.Fields{
		"period":  s.Period,
		"release": s.ReleaseDelay,
	}).Info("Key scheduler started")
}

// Stop disarms the periodic timer. A pending release is left to fire.
func (s *Scheduler) Stop() {
	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	s.ticker = nil
	s.logger.Debug("Key scheduler stopped")
}

// Tick sends one press and schedules its release. It does nothing while
// the host is not subscribed.
func (s *Scheduler) Tick() {
	if !s.report.Notifying() {
		s.logger.WithField("path", s.report.Path()).Debug("Not notifying, skipping key")
		return
	}

	s.send(s.nextKey())
	s.timers.AfterFunc(s.ReleaseDelay, func() {
		s.send(hid.Release())
	})
}

func (s *Scheduler) nextKey() hid.InputReport {
	if len(s.text) == 0 {
		return s.Key
	}
	k := s.text[s.pos]
	s.pos = (s.pos + 1) % len(s.text)
	return k
}

func (s *Scheduler) send(r hid.InputReport) {
	if err := s.report.Notify(r.Encode()); err != nil {
		s.logger.WithError(err).WithField("report", r.String()).Warn("Failed to emit input report")
		return
	}
	s.logger.WithField("report", r.String()).Debug("Input report sent")
	if s.onSent != nil {
		s.onSent(r)
	}
}
