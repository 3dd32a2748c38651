package bridge

import "github.com/hidrelay/bridge/resample"

// SendResult is the categorical outcome of a Sink attempting one delivery.
// Reused directly from resample so the facade's tick loop and the
// resampler's internal retry logic speak the same vocabulary.
type SendResult = resample.SendResult

const (
	SendOK     = resample.SendOK
	SendBusy   = resample.SendBusy
	SendFailed = resample.SendFailed
)

// Sink is the wireless transport boundary. Ready must never block; the
// three Send* methods may block briefly but must not be called from the
// USB input path — only from the facade's Tick.
type Sink interface {
	Ready() bool
	SendPointing(resample.PointingReport) SendResult
	// SendKeyboard delivers an 8-byte boot-protocol keyboard report
	// (modifier, reserved, 6 scan codes) unchanged from the wired device.
	SendKeyboard(report [8]byte) SendResult
	// SendConsumer delivers an opaque consumer-control report, at most 2
	// bytes, with any leading report-id byte already stripped.
	SendConsumer(report []byte) SendResult
}
