package bridge

import (
	"sync"
	"sync/atomic"

	"github.com/hidrelay/bridge/resample"
)

// Frame is one outbound notification captured by NotifySink, tagged by
// which wire shape produced it.
type Frame struct {
	Kind     FrameKind
	Pointing resample.PointingReport
	Raw      []byte
}

// FrameKind distinguishes the three wire shapes a Sink delivers.
type FrameKind int

const (
	FramePointing FrameKind = iota
	FrameKeyboard
	FrameConsumer
)

// NotifySink is a Sink backed by an in-process channel, usable without real
// BLE hardware: a CLI loopback mode or a test can drain Frames from the
// channel to observe exactly what the facade would have sent over the air.
type NotifySink struct {
	ready atomic.Bool
	out   chan Frame
}

// NewNotifySink returns a ready NotifySink with the given outbound buffer
// capacity. A full buffer causes sends to report SendBusy rather than block.
func NewNotifySink(capacity int) *NotifySink {
	s := &NotifySink{out: make(chan Frame, capacity)}
	s.ready.Store(true)
	return s
}

// SetReady toggles whether the sink currently accepts sends, modeling a
// transport that is momentarily disconnected or not yet subscribed.
func (s *NotifySink) SetReady(ready bool) { s.ready.Store(ready) }

func (s *NotifySink) Ready() bool { return s.ready.Load() }

// Frames returns the channel of delivered frames for a consumer to drain.
func (s *NotifySink) Frames() <-chan Frame { return s.out }

func (s *NotifySink) SendPointing(r resample.PointingReport) SendResult {
	return s.send(Frame{Kind: FramePointing, Pointing: r})
}

func (s *NotifySink) SendKeyboard(r [8]byte) SendResult {
	return s.send(Frame{Kind: FrameKeyboard, Raw: append([]byte(nil), r[:]...)})
}

func (s *NotifySink) SendConsumer(r []byte) SendResult {
	return s.send(Frame{Kind: FrameConsumer, Raw: append([]byte(nil), r...)})
}

func (s *NotifySink) send(f Frame) SendResult {
	if !s.ready.Load() {
		return SendBusy
	}
	select {
	case s.out <- f:
		return SendOK
	default:
		return SendBusy
	}
}

// FlakySink wraps a Sink and fails a configurable fraction of sends with
// SendFailed, to exercise a resampler's rollback-and-retry path without
// real hardware flakiness.
type FlakySink struct {
	inner Sink

	mu       sync.Mutex
	every    int // fail one send out of every `every` attempts; 0 disables
	attempts int
}

// NewFlakySink wraps inner so that one out of every `every` Send* calls,
// counted across all three Send* methods together, returns SendFailed
// instead of delegating. every <= 0 means never fail.
func NewFlakySink(inner Sink, every int) *FlakySink {
	return &FlakySink{inner: inner, every: every}
}

func (f *FlakySink) Ready() bool { return f.inner.Ready() }

func (f *FlakySink) shouldFail() bool {
	if f.every <= 0 {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	return f.attempts%f.every == 0
}

func (f *FlakySink) SendPointing(r resample.PointingReport) SendResult {
	if f.shouldFail() {
		return SendFailed
	}
	return f.inner.SendPointing(r)
}

func (f *FlakySink) SendKeyboard(r [8]byte) SendResult {
	if f.shouldFail() {
		return SendFailed
	}
	return f.inner.SendKeyboard(r)
}

func (f *FlakySink) SendConsumer(r []byte) SendResult {
	if f.shouldFail() {
		return SendFailed
	}
	return f.inner.SendConsumer(r)
}
