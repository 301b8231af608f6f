package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/srg/blekbd/internal/bluez"
	"github.com/srg/blekbd/internal/hid"
	"github.com/srg/blekbd/internal/keyboard"
	"github.com/srg/blekbd/internal/loop"
	"github.com/srg/blekbd/internal/peripheral"
	"github.com/srg/blekbd/pkg/config"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the keyboard peripheral",
		Long: `Registers the HID keyboard with BlueZ and advertises it.

While a host is subscribed to the Input Report, the keyboard presses the
configured key every period and releases it after the release delay. With
--text, the characters of the text are typed one per period instead.

Ctrl+C unregisters the advertisement and the application before exiting.`,
		Example: `  blekbd run
  blekbd run --adapter hci1 --name Typist --period 2s --key 0x28
  blekbd run --text "Hello world" --echo`,
		Args: cobra.NoArgs,
		RunE: runRun,
	}

	cmd.Flags().String("adapter", "", "Adapter name (e.g. hci0); first adapter if empty")
	cmd.Flags().String("name", "", "Advertised local name")
	cmd.Flags().Duration("period", keyboard.DefaultPeriod, "Interval between key presses")
	cmd.Flags().Duration("release", keyboard.DefaultReleaseDelay, "Delay between press and release")
	cmd.Flags().String("key", "", `Key to press: a character or a usage ID such as "0x04"`)
	cmd.Flags().String("text", "", "Text to type repeatedly instead of a single key")
	cmd.Flags().Bool("control-point", false, "Expose the HID Control Point characteristic")
	cmd.Flags().Bool("echo", false, "Print every input report sent to the host")
	return cmd
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := configureLogger(cmd, cfg)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true
	echo, _ := cmd.Flags().GetBool("echo")

	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return fmt.Errorf("failed to connect to the system bus: %w", err)
	}
	defer conn.Close()

	adapter, err := bluez.FindAdapter(conn, cfg.Adapter)
	if err != nil {
		return err
	}
	if err := bluez.PowerOn(conn, adapter); err != nil {
		return fmt.Errorf("failed to power on %s: %w", adapter, err)
	}
	logger.WithField("adapter", adapter).Info("Using adapter")

	kb, err := buildKeyboard(cfg, logger)
	if err != nil {
		return err
	}

	signals := make(chan os.Signal, 2)
	signal.Notify(signals, unix.SIGINT, unix.SIGTERM)
	defer signal.Stop(signals)
	return serve(cmd.Context(), conn, adapter, kb, cfg, logger, echoWriter(cmd, echo), signals)
}

func echoWriter(cmd *cobra.Command, enabled bool) io.Writer {
	if !enabled {
		return nil
	}
	return cmd.OutOrStdout()
}

// serve exports kb, runs the main loop until shutdown and returns the fault
// that stopped it, if any. The first value on signals starts the shutdown
// sequence, the second quits at once.
func serve(ctx context.Context, conn bluez.Conn, adapter dbus.ObjectPath, kb *keyboardObjects,
	cfg *config.Config, logger *logrus.Logger, echo io.Writer, signals <-chan os.Signal) error {
	l := loop.New(logger)

	emitter := bluez.NewEmitter(conn, cfg.TapSize, logger)
	defer emitter.Close()
	kb.setEmitter(emitter)

	exporter := bluez.NewExporter(conn, l, logger)
	defer exporter.Unexport()
	if err := exporter.ExportApplication(kb.app); err != nil {
		return err
	}
	if err := exporter.ExportAdvertisement(kb.adv); err != nil {
		return err
	}

	sched := keyboard.NewScheduler(kb.hid.InputReport, keyboard.LoopTimers(l), logger)
	sched.Period = cfg.Period
	sched.ReleaseDelay = cfg.ReleaseDelay
	if cfg.Text != "" {
		if err := sched.TypeText(cfg.Text); err != nil {
			return err
		}
	} else {
		key, err := hid.ParseKey(cfg.Key)
		if err != nil {
			return err
		}
		sched.Key = key
	}
	var reports int
	sched.OnSent(func(hid.InputReport) { reports++ })

	p := peripheral.New(peripheral.Config{
		App:           kb.app,
		Advertisement: kb.adv,
		GattManager:   bluez.NewGattManager(conn, adapter, l, logger),
		AdvManager:    bluez.NewAdvertisingManager(conn, adapter, l, logger),
		Loop:          l,
		Driver:        sched,
		Logger:        logger,
	})

	if echo != nil {
		loop.Go(ctx, "echo", func(context.Context) {
			printReports(newPrinter(echo), emitter.Tap().C())
		})
	}

	loop.Go(ctx, "signals", func(context.Context) {
		watchSignals(l, p, signals, cfg.ShutdownTimeout, logger)
	})

	l.Post(p.Start)
	err := l.Run(ctx)

	stats := emitter.Tap().Stats()
	logger.WithFields(logrus.Fields{
		"reports":           reports,
		"emitted":           stats.Sent,
		"dropped":           stats.Dropped,
		"buffered":          emitter.Tap().Len(),
		"unregister_faults": len(p.Faults()),
		"state":             p.State(),
	}).Debug("Main loop stopped")
	return err
}

// watchSignals starts the shutdown sequence on the first signal and arms
// timeout for it. A second signal quits the loop without waiting for BlueZ.
func watchSignals(l *loop.Loop, p *peripheral.Peripheral, signals <-chan os.Signal,
	timeout time.Duration, logger *logrus.Logger) {
	shuttingDown := false
	for {
		select {
		case sig := <-signals:
			if shuttingDown {
				logger.WithField("signal", sig).Warn("Interrupted again, exiting without waiting for BlueZ")
				l.Quit(ErrInterrupted)
				return
			}
			shuttingDown = true
			logger.WithField("signal", sig).Info("Shutting down")
			l.Post(func() {
				p.Shutdown()
				if p.State() != peripheral.StateStopped {
					l.AfterFunc(timeout, func() { l.Quit(ErrShutdownTimeout) })
				}
			})
		case <-l.Done():
			return
		}
	}
}

// printReports prints input report notifications until changes is closed.
func printReports(p *printer, changes <-chan bluez.Change) {
	for c := range changes {
		v, ok := c.Changed["Value"]
		if !ok {
			continue
		}
		b, ok := v.Value().([]byte)
		if !ok {
			continue
		}
		report, err := hid.DecodeInputReport(b)
		if err != nil {
			p.printf("%s %s\n", p.dim.Sprint(c.Path), p.value.Sprintf("% x", b))
			continue
		}
		p.printf("%s %s %s\n", p.dim.Sprint(c.Path), p.value.Sprint(report), describeReport(report))
	}
}

// describeReport renders a report as e.g. "LShift+0x0b" or "release".
func describeReport(r hid.InputReport) string {
	if r.IsRelease() {
		return "release"
	}
	var keys []string
	for _, k := range r.Keys {
		if k != hid.UsageNone {
			keys = append(keys, fmt.Sprintf("0x%02x", uint8(k)))
		}
	}
	switch {
	case r.Modifiers == 0:
		return strings.Join(keys, ",")
	case len(keys) == 0:
		return r.Modifiers.String()
	}
	return r.Modifiers.String() + "+" + strings.Join(keys, ",")
}
