package resample

import "sync"

// PointingReport is the saturated, fixed-width report a Resampler hands to
// a Sink: a 6-byte pointing report (buttons, 16-bit X/Y, 8-bit wheel).
type PointingReport struct {
	Buttons uint8
	DX      int16
	DY      int16
	Wheel   int8
}

// SendResult is the outcome of a Sink's attempt to deliver one PointingReport.
type SendResult int

const (
	// SendOK means the report was accepted; the resampler commits (drops
	// the consumed events and keeps only the leftover residual).
	SendOK SendResult = iota
	// SendBusy means the sink could not accept a report right now; the
	// resampler rolls back and retries the same integration window later.
	SendBusy
	// SendFailed means the sink attempted delivery and it failed; treated
	// the same as SendBusy for retry purposes.
	SendFailed
)

// PointingSink is the narrow surface a Resampler needs from a notification
// transport. It never blocks on Ready, and SendPointing is called without
// the resampler's lock held.
type PointingSink interface {
	Ready() bool
	SendPointing(PointingReport) SendResult
}

// state is the resampler's three-state send lifecycle.
type state int

const (
	stateIdle   state = iota // nothing buffered, nothing dirty
	stateArmed               // events or a button edge are waiting for the next tick
	statePending             // a send attempt is in flight for the current window
)

const defaultSendIntervalUs = 7500 // 7.5ms, the fastest standard BLE connection interval

// Resampler buffers pointing Events in a bounded Ring and, on each Tick,
// integrates the buffered window into one saturated PointingReport. A
// successful send commits the consumed events; a failed or refused send
// rolls back so the same window is retried on the next Tick.
type Resampler struct {
	mu sync.Mutex

	ring *Ring

	residualDX, residualDY, residualWheel int32
	lastButtons                           uint8
	buttonsDirty                          bool

	st             state
	sendIntervalUs int64

	// NowUs returns the current time in microseconds. Tests substitute a
	// deterministic clock; production wiring uses a monotonic source.
	NowUs func() int64
}

// NewResampler returns a Resampler with the given ring capacity (rounded up
// to a power of two; <= 0 uses the package default).
func NewResampler(ringCapacity int) *Resampler {
	return &Resampler{
		ring:           NewRing(ringCapacity),
		sendIntervalUs: defaultSendIntervalUs,
		NowUs:          func() int64 { return 0 },
	}
}

// Push enqueues one motion sample. It never blocks and never calls into a
// Sink; safe to call from the USB input path.
func (r *Resampler) Push(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ring.Push(e)
	if e.Buttons != r.lastButtons {
		r.buttonsDirty = true
	}
	if r.st == stateIdle {
		r.st = stateArmed
	}
}

// UpdateSendInterval records the notification cadence from a BLE connection
// interval expressed in 1.25ms units (the units a Link Layer negotiation
// reports). The value is reported by SendIntervalUs; Tick does not read it,
// and how often Tick runs is decided by its caller.
func (r *Resampler) UpdateSendInterval(units uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sendIntervalUs = int64(units) * 1250
}

// SendIntervalUs reports the current configured send cadence.
func (r *Resampler) SendIntervalUs() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sendIntervalUs
}

// State reports the resampler's current lifecycle state, for diagnostics.
func (r *Resampler) State() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.st {
	case stateIdle:
		return "idle"
	case stateArmed:
		return "armed"
	default:
		return "pending"
	}
}

// OverflowCount reports how many buffered events have been dropped because
// the ring filled faster than Tick drained it.
func (r *Resampler) OverflowCount() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ring.OverflowCount()
}

// Clear discards all buffered motion and residual carry, and resets the
// last-known button state to buttons. Used when a link is torn down or replaced.
func (r *Resampler) Clear(buttons uint8) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ring.Clear()
	r.residualDX, r.residualDY, r.residualWheel = 0, 0, 0
	r.lastButtons = buttons
	r.buttonsDirty = false
	r.st = stateIdle
}

// Tick runs one preview/send/commit cycle against sink. It is a no-op
// returning SendOK if there is nothing buffered and no pending button edge.
// If sink is not Ready, the window is left untouched (preview only) and
// SendBusy is returned. The call into sink.SendPointing happens without the
// resampler's lock held, so a slow sink never blocks Push.
func (r *Resampler) Tick(sink PointingSink) SendResult {
	r.mu.Lock()
	if r.ring.Len() == 0 && !r.buttonsDirty &&
		r.residualDX == 0 && r.residualDY == 0 && r.residualWheel == 0 {
		r.st = stateIdle
		r.mu.Unlock()
		return SendOK
	}
	if !sink.Ready() {
		r.mu.Unlock()
		return SendBusy
	}

	now := r.NowUs()
	all := r.ring.Peek()
	// Only integrate events timestamped at or before now; a future-dated
	// event (possible under clock skew between producer and tick) is left
	// in the ring for a later tick rather than time-traveled into this one.
	numToConsume := 0
	for numToConsume < len(all) && all[numToConsume].TimestampUs <= now {
		numToConsume++
	}
	events := all[:numToConsume]

	sumDX := r.residualDX
	sumDY := r.residualDY
	sumWheel := r.residualWheel
	buttons := r.lastButtons
	for _, e := range events {
		sumDX += int32(e.DX)
		sumDY += int32(e.DY)
		sumWheel += int32(e.Wheel)
		buttons = e.Buttons
	}

	// motionDirty reflects the window's net integrated motion (including
	// carried residual), not just whether new events arrived: a residual
	// left over from a saturated send must still drain on a later idle
	// tick, per spec.md §8 scenario 3.
	motionDirty := sumDX != 0 || sumDY != 0 || sumWheel != 0
	buttonDirty := r.buttonsDirty || buttons != r.lastButtons
	if !motionDirty && !buttonDirty {
		r.mu.Unlock()
		return SendOK
	}

	dx16, restDX := saturateInt16(sumDX)
	dy16, restDY := saturateInt16(sumDY)
	wheel8, restWheel := saturateInt8(sumWheel)

	report := PointingReport{Buttons: buttons, DX: dx16, DY: dy16, Wheel: wheel8}
	r.st = statePending
	r.mu.Unlock()

	result := sink.SendPointing(report)

	r.mu.Lock()
	defer r.mu.Unlock()
	if result == SendOK {
		r.ring.Drop(len(events))
		r.residualDX, r.residualDY, r.residualWheel = restDX, restDY, restWheel
		r.lastButtons = buttons
		r.buttonsDirty = false
		if r.ring.Len() > 0 {
			r.st = stateArmed
		} else {
			r.st = stateIdle
		}
		return SendOK
	}

	// Rollback: the preview is discarded, nothing committed, the same
	// window (plus whatever Push added meanwhile) is retried next Tick.
	r.st = stateArmed
	return result
}

// saturateInt8 clamps v to [-127, 127] and returns the clamped value along
// with the leftover (v minus what was actually sent), to be carried into
// the next window's residual. -128 is avoided even though it fits in an
// int8: some hosts read it as a sentinel "no change" value.
func saturateInt8(v int32) (int8, int32) {
	const min, max = -127, 127
	if v > max {
		return max, v - max
	}
	if v < min {
		return min, v - min
	}
	return int8(v), 0
}

// saturateInt16 is saturateInt8's counterpart for the 16-bit X/Y fields,
// clamped to [-32767, 32767] for the same sentinel-avoidance reason.
func saturateInt16(v int32) (int16, int32) {
	const min, max = -32767, 32767
	if v > max {
		return max, v - max
	}
	if v < min {
		return min, v - min
	}
	return int16(v), 0
}
