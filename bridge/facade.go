package bridge

import (
	"sync"

	"github.com/hidrelay/bridge/hid"
	"github.com/hidrelay/bridge/resample"
)

const frameQueueCapacity = 8

// deviceState is everything the facade tracks for one attached HID device.
type deviceState struct {
	mu sync.Mutex

	layouts   []hid.Layout
	keyboard  bool
	pointing  bool
	resampler *resample.Resampler

	kbQueue       [][8]byte
	consumerQueue [][]byte
}

// Facade is the single coordinating object between wired HID input and a
// wireless Sink. It owns no singletons: callers construct one Facade per
// bridged link and drive it from their own goroutines.
type Facade struct {
	mu      sync.RWMutex
	devices map[string]*deviceState
	c       counters

	// NowUs supplies the monotonic clock used to timestamp pointing
	// events; tests substitute a deterministic source.
	NowUs func() int64

	// PointingRingCapacity sizes every pointing device's event ring.
	// <= 0 uses the package default.
	PointingRingCapacity int
}

// NewFacade returns an empty Facade ready to accept device attachments.
func NewFacade() *Facade {
	return &Facade{
		devices: make(map[string]*deviceState),
		NowUs:   func() int64 { return 0 },
	}
}

// OnDeviceAttached parses descriptor, classifies the device, and begins
// tracking it under id. Re-attaching an id replaces its prior state.
func (f *Facade) OnDeviceAttached(id string, descriptor []byte) {
	layouts := hid.Parse(descriptor)
	keyboard, pointing := hid.Classify(descriptor, layouts)

	ds := &deviceState{layouts: layouts, keyboard: keyboard, pointing: pointing}
	if pointing {
		ds.resampler = resample.NewResampler(f.PointingRingCapacity)
		ds.resampler.NowUs = f.NowUs
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.devices[id] = ds
}

// OnDeviceDetached stops tracking id. Reports for an unknown id are ignored.
func (f *Facade) OnDeviceDetached(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.devices, id)
}

// OnSinkReadyChanged notifies the facade of the sink's readiness
// transition. A transition to not-ready clears every attached pointing
// device's resampler (buffered ring, residual carry, last-sent/last-seen
// button state), matching the core contract in spec.md §6/§7: once the
// sink becomes ready again, it starts from a clean window rather than
// replaying motion integrated while disconnected.
func (f *Facade) OnSinkReadyChanged(ready bool) {
	if ready {
		return
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, ds := range f.devices {
		if ds.resampler != nil {
			ds.resampler.Clear(0)
		}
	}
}

// OnLinkIntervalUpdated records a newly negotiated BLE connection interval,
// expressed in 1.25ms units, as every attached pointing device's send
// interval (see resample.Resampler.UpdateSendInterval). It does not change
// how often Tick is called.
func (f *Facade) OnLinkIntervalUpdated(units uint16) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, ds := range f.devices {
		if ds.resampler != nil {
			ds.resampler.UpdateSendInterval(units)
		}
	}
}

// OnInputReport routes one raw input report from device id by the role that
// report's own report-id/layout indicates, not merely by the device's
// overall classified roles. A composite device (e.g. both a Mouse and a
// Keyboard application collection) carries both a pointing layout and a
// keyboard layout under different report ids, and each inbound report must
// be matched to its own layout so a keyboard report is never swallowed by
// the pointing decode path. It never blocks: pointing reports are decoded
// and pushed into that device's resampler ring; keyboard and
// consumer-control reports are queued for the next Tick. ok is false if id
// is unknown or the report failed to decode against the device's layout
// catalog.
func (f *Facade) OnInputReport(id string, report []byte) bool {
	f.mu.RLock()
	ds := f.devices[id]
	f.mu.RUnlock()
	if ds == nil {
		return false
	}

	if ds.reportLooksLikePointing(report) {
		r, ok := hid.Decode(report, ds.layouts)
		if !ok {
			f.c.reportsRejected.Add(1)
			return false
		}
		f.c.reportsDecoded.Add(1)
		ds.resampler.Push(resample.Event{
			TimestampUs: f.NowUs(),
			DX:          r.DX,
			DY:          r.DY,
			Wheel:       r.Wheel,
			Buttons:     r.Buttons,
		})
		return true
	}

	switch {
	case ds.keyboard:
		var frame [8]byte
		copy(frame[:], report)
		ds.enqueueKeyboard(frame, &f.c)
		return true

	default:
		ds.enqueueConsumer(stripReportID(report, ds.layouts), &f.c)
		return true
	}
}

// reportLooksLikePointing decides, for one inbound report, whether it
// belongs to ds's pointing role. A device classified as pointing-only
// routes every report through the pointing path unconditionally (including
// the boot-protocol/length-based fallback hid.Decode applies when no
// layout was parsed at all). A composite device that is also classified as
// keyboard must instead look up the specific layout this report's
// report-id selects and check whether that layout actually carries an X or
// Y field; a keyboard-role report-id on the same device has neither, and
// falls through to the keyboard branch instead of being silently decoded
// into a zero-motion pointing event.
func (ds *deviceState) reportLooksLikePointing(report []byte) bool {
	if !ds.pointing {
		return false
	}
	if !ds.keyboard {
		return true
	}
	layout, ok := ds.layoutForReport(report)
	return ok && (layout.X.BitSize > 0 || layout.Y.BitSize > 0)
}

// layoutForReport selects the Layout matching report's leading report-id
// byte, mirroring hid.Decode's own report-id matching so the two stay in
// agreement about which layout a given buffer belongs to.
func (ds *deviceState) layoutForReport(report []byte) (hid.Layout, bool) {
	hasID := false
	for _, l := range ds.layouts {
		if l.ReportID != 0 {
			hasID = true
			break
		}
	}
	if !hasID {
		if len(ds.layouts) == 0 {
			return hid.Layout{}, false
		}
		return ds.layouts[0], true
	}
	if len(report) < 1 {
		return hid.Layout{}, false
	}
	id := report[0]
	for _, l := range ds.layouts {
		if l.ReportID == id {
			return l, true
		}
	}
	return hid.Layout{}, false
}

// stripReportID drops a leading report-id byte from a consumer-control
// frame's wire representation when one is present (some layout in the
// device's catalog has a non-zero report id), since the sink's SendConsumer
// contract is report-id free. A single-byte frame from such a device is
// assumed to be the id alone and produces an empty payload.
func stripReportID(report []byte, layouts []hid.Layout) []byte {
	hasID := false
	for _, l := range layouts {
		if l.ReportID != 0 {
			hasID = true
			break
		}
	}
	if !hasID {
		return report
	}
	if len(report) <= 1 {
		return nil
	}
	return report[1:]
}

func (ds *deviceState) enqueueKeyboard(frame [8]byte, c *counters) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if len(ds.kbQueue) >= frameQueueCapacity {
		ds.kbQueue = ds.kbQueue[1:]
		c.overflow.Add(1)
	}
	ds.kbQueue = append(ds.kbQueue, frame)
}

func (ds *deviceState) enqueueConsumer(payload []byte, c *counters) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if len(ds.consumerQueue) >= frameQueueCapacity {
		ds.consumerQueue = ds.consumerQueue[1:]
		c.overflow.Add(1)
	}
	ds.consumerQueue = append(ds.consumerQueue, payload)
}

func (ds *deviceState) drainKeyboard() [][8]byte {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	out := ds.kbQueue
	ds.kbQueue = nil
	return out
}

func (ds *deviceState) drainConsumer() [][]byte {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	out := ds.consumerQueue
	ds.consumerQueue = nil
	return out
}

// Tick drives one notification cycle across every attached device: each
// pointing device's resampler integrates and attempts a send, and every
// queued keyboard/consumer frame is forwarded to sink. Send outcomes update
// the facade's diagnostics counters.
func (f *Facade) Tick(sink Sink) {
	f.mu.RLock()
	states := make([]*deviceState, 0, len(f.devices))
	for _, ds := range f.devices {
		states = append(states, ds)
	}
	f.mu.RUnlock()

	for _, ds := range states {
		if ds.pointing {
			f.recordResult(ds.resampler.Tick(sink))
		}
		if ds.keyboard {
			for _, frame := range ds.drainKeyboard() {
				f.recordResult(sink.SendKeyboard(frame))
			}
		} else if !ds.pointing {
			for _, payload := range ds.drainConsumer() {
				f.recordResult(sink.SendConsumer(payload))
			}
		}
	}
}

func (f *Facade) recordResult(result SendResult) {
	switch result {
	case SendOK:
		f.c.sendSuccess.Add(1)
	case SendFailed, SendBusy:
		f.c.sendFailure.Add(1)
	}
}

// Snapshot reports the facade's cumulative diagnostics counters.
func (f *Facade) Snapshot() Counters {
	c := f.c.snapshot()
	c.Overflow = f.OverflowCount()
	return c
}

// OverflowCount reports frames dropped from a device's keyboard/consumer
// queue plus any pointing-ring overflow, aggregated across all devices.
func (f *Facade) OverflowCount() uint64 {
	total := f.c.overflow.Load()
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, ds := range f.devices {
		if ds.resampler != nil {
			total += ds.resampler.OverflowCount()
		}
	}
	return total
}
