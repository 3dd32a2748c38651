package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/hidrelay/bridge/bridge"
	"github.com/hidrelay/bridge/internal/hidraw"
	intlog "github.com/hidrelay/bridge/internal/log"
)

// RunCmd attaches one hidraw device, bridges it through the core facade to
// a chosen Sink, and ticks at a fixed cadence until interrupted.
type RunCmd struct {
	Device            string        `arg:"" name:"device" help:"Path to the hidraw device node (e.g. /dev/hidraw0)"`
	TickInterval      time.Duration `help:"Notification cadence" default:"7.5ms"`
	LinkIntervalUnits uint16        `help:"Negotiated BLE connection interval, in 1.25ms units, recorded as the resampler's send interval (ticks still run at --tick-interval)" default:"6"`
	RingCapacity      int           `help:"Pointing event ring capacity (rounded up to a power of two)" default:"128"`
	FlakyEvery        int           `help:"Fail one out of every N sink sends, for testing retry behavior; 0 disables" default:"0"`
	SinkBuffer        int           `help:"Outbound notification channel capacity" default:"32"`
	SinkReady         bool          `help:"Initial sink readiness; set false to start in a disconnected loopback state" default:"true"`
}

func (c *RunCmd) Run(logger *slog.Logger, raw intlog.RawLogger) error {
	dev, err := hidraw.Open(c.Device)
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	defer dev.Close()

	facade := bridge.NewFacade()
	facade.PointingRingCapacity = c.RingCapacity
	start := time.Now()
	facade.NowUs = func() int64 { return time.Since(start).Microseconds() }
	facade.OnDeviceAttached(c.Device, dev.Descriptor())
	facade.OnLinkIntervalUpdated(c.LinkIntervalUnits)
	logger.Info("device attached", "device", c.Device, "descriptor_bytes", len(dev.Descriptor()))

	notify := bridge.NewNotifySink(c.SinkBuffer)
	notify.SetReady(c.SinkReady)
	if !c.SinkReady {
		facade.OnSinkReadyChanged(false)
	}
	var sink bridge.Sink = notify
	if c.FlakyEvery > 0 {
		sink = bridge.NewFlakySink(notify, c.FlakyEvery)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	readErrs := make(chan error, 1)
	go func() {
		readErrs <- dev.ReadLoop(ctx, func(report []byte) {
			raw.Log(true, report)
			facade.OnInputReport(c.Device, report)
		})
	}()

	go drainNotifications(ctx, notify, raw)

	ticker := time.NewTicker(c.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			facade.OnDeviceDetached(c.Device)
			counters := facade.Snapshot()
			logger.Info("shutting down", "counters", counters)
			return nil
		case err := <-readErrs:
			return fmt.Errorf("hidraw read loop: %w", err)
		case <-ticker.C:
			facade.Tick(sink)
		}
	}
}

// drainNotifications logs every frame a NotifySink accumulates, so `run`
// is observable without real BLE hardware attached.
func drainNotifications(ctx context.Context, notify *bridge.NotifySink, raw intlog.RawLogger) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame := <-notify.Frames():
			data := frame.Raw
			if frame.Kind == bridge.FramePointing {
				p := frame.Pointing
				data = []byte{p.Buttons, byte(p.DX), byte(uint16(p.DX) >> 8), byte(p.DY), byte(uint16(p.DY) >> 8), byte(p.Wheel)}
			}
			raw.Log(false, data)
		}
	}
}
