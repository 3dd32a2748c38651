package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mouseDescriptorFixture() []byte {
	// Mirrors hid.mouseDescriptorWithReportID(1): 16 buttons, 12-bit X/Y,
	// 8-bit wheel, 8 bits padding, 56 bits total.
	return []byte{
		0x05, 0x01, // Usage Page (Generic Desktop)
		0x09, 0x02, // Usage (Mouse)
		0xA1, 0x01, // Collection (Application)
		0x05, 0x01, //   Usage Page (Generic Desktop)
		0x09, 0x01, //   Usage (Pointer)
		0xA1, 0x00, //   Collection (Physical)
		0x85, 0x01, //     Report ID (1)
		0x05, 0x09, //     Usage Page (Button)
		0x19, 0x01, //     Usage Minimum (1)
		0x29, 0x10, //     Usage Maximum (16)
		0x15, 0x00, //     Logical Minimum (0)
		0x26, 0x01, 0x00, //     Logical Maximum (1)
		0x75, 0x01, //     Report Size (1)
		0x95, 0x10, //     Report Count (16)
		0x81, 0x02, //     Input (Data,Var,Abs)
		0x05, 0x01, //     Usage Page (Generic Desktop)
		0x09, 0x30, //     Usage (X)
		0x09, 0x31, //     Usage (Y)
		0x15, 0xFF, //     Logical Minimum (-1)
		0x26, 0xFF, 0x07, //     Logical Maximum (2047)
		0x75, 0x0C, //     Report Size (12)
		0x95, 0x02, //     Report Count (2)
		0x81, 0x06, //     Input (Data,Var,Rel)
		0x09, 0x38, //     Usage (Wheel)
		0x15, 0xFF, //     Logical Minimum (-1)
		0x26, 0x7F, 0x00, //     Logical Maximum (127)
		0x75, 0x08, //     Report Size (8)
		0x95, 0x01, //     Report Count (1)
		0x81, 0x06, //     Input (Data,Var,Rel)
		0x75, 0x08, //     Report Size (8)
		0x95, 0x01, //     Report Count (1)
		0x81, 0x01, //     Input (Constant)
		0xC0, //   End Collection
		0xC0, // End Collection
	}
}

// keyboardDescriptorFixtureWithReportID mirrors the keyboard fixture in
// TestFacadeKeyboardDirectForward, but with a leading Report ID item so it
// can be concatenated after mouseDescriptorFixture into one composite
// descriptor without the two application collections colliding on the
// same report id.
func keyboardDescriptorFixtureWithReportID(id byte) []byte {
	return []byte{
		0x05, 0x01, 0x09, 0x06, 0xA1, 0x01, // Generic Desktop, Keyboard, App Collection
		0x85, id, // Report ID
		0x05, 0x07, 0x19, 0xE0, 0x29, 0xE7, // Key Codes page, modifiers
		0x15, 0x00, 0x25, 0x01,
		0x75, 0x01, 0x95, 0x08, 0x81, 0x02, // 8 modifier bits
		0x75, 0x08, 0x95, 0x01, 0x81, 0x01, // 8 bits reserved
		0x05, 0x07, 0x19, 0x00, 0x29, 0xFF, // Key Codes page, array
		0x15, 0x00, 0x26, 0xFF, 0x00,
		0x75, 0x08, 0x95, 0x06, 0x81, 0x00, // 6 key code bytes
		0xC0,
	}
}

func compositeDescriptorFixture() []byte {
	return append(append([]byte{}, mouseDescriptorFixture()...), keyboardDescriptorFixtureWithReportID(2)...)
}

// TestFacadeCompositeDeviceRoutesBothRoles guards against a composite
// device's keyboard reports being swallowed by the pointing decode path: a
// device with both a Mouse and a Keyboard application collection must
// route each inbound report by the report-id/layout it actually matches,
// not by the device's overall classified roles alone.
func TestFacadeCompositeDeviceRoutesBothRoles(t *testing.T) {
	f := NewFacade()
	f.OnDeviceAttached("composite0", compositeDescriptorFixture())

	mouseReport := make([]byte, 8)
	mouseReport[0] = 1
	mouseReport[1] = 5
	require.True(t, f.OnInputReport("composite0", mouseReport))
	assert.EqualValues(t, 1, f.Snapshot().ReportsDecoded)

	kbReport := [8]byte{2, 0, 0x04, 0, 0, 0, 0, 0}
	require.True(t, f.OnInputReport("composite0", kbReport[:]))

	sink := NewNotifySink(4)
	f.Tick(sink)

	kinds := map[FrameKind]int{}
	var kbRaw []byte
	for i := 0; i < 2; i++ {
		frame := <-sink.Frames()
		kinds[frame.Kind]++
		if frame.Kind == FrameKeyboard {
			kbRaw = frame.Raw
		}
	}
	assert.Equal(t, 1, kinds[FramePointing], "mouse report-id must still reach the resampler")
	assert.Equal(t, 1, kinds[FrameKeyboard], "keyboard report-id must not be swallowed by the pointing path")
	assert.Equal(t, kbReport[:], kbRaw)
}

func TestFacadeAttachDetach(t *testing.T) {
	f := NewFacade()
	f.OnDeviceAttached("mouse0", mouseDescriptorFixture())
	report := make([]byte, 8)
	report[0] = 1 // report id
	ok := f.OnInputReport("mouse0", report)
	assert.True(t, ok)

	f.OnDeviceDetached("mouse0")
	ok = f.OnInputReport("mouse0", report)
	assert.False(t, ok)
}

func TestFacadeRoutesPointingThroughResampler(t *testing.T) {
	f := NewFacade()
	f.OnDeviceAttached("mouse0", mouseDescriptorFixture())

	report := make([]byte, 8)
	report[0] = 1 // report id
	report[1] = 5 // buttons, so the tick has a change to send
	ok := f.OnInputReport("mouse0", report)
	require.True(t, ok)
	assert.EqualValues(t, 1, f.Snapshot().ReportsDecoded)

	sink := NewNotifySink(4)
	f.Tick(sink)
	select {
	case frame := <-sink.Frames():
		assert.Equal(t, FramePointing, frame.Kind)
	default:
		t.Fatal("expected a pointing frame after tick")
	}
	assert.EqualValues(t, 1, f.Snapshot().SendSuccess)
}

func TestFacadeRejectsUndecodableReport(t *testing.T) {
	f := NewFacade()
	f.OnDeviceAttached("mouse0", mouseDescriptorFixture())

	ok := f.OnInputReport("mouse0", []byte{1, 0, 0})
	assert.False(t, ok)
	assert.EqualValues(t, 1, f.Snapshot().ReportsRejected)
}

func TestFacadeKeyboardDirectForward(t *testing.T) {
	desc := []byte{
		0x05, 0x01, 0x09, 0x06, 0xA1, 0x01, // Generic Desktop, Keyboard, App Collection
		0x05, 0x07, 0x19, 0xE0, 0x29, 0xE7, // Key Codes page, modifiers
		0x15, 0x00, 0x25, 0x01,
		0x75, 0x01, 0x95, 0x08, 0x81, 0x02, // 8 modifier bits
		0x75, 0x08, 0x95, 0x01, 0x81, 0x01, // 8 bits reserved
		0x05, 0x07, 0x19, 0x00, 0x29, 0xFF, // Key Codes page, array
		0x15, 0x00, 0x26, 0xFF, 0x00,
		0x75, 0x08, 0x95, 0x06, 0x81, 0x00, // 6 key code bytes
		0xC0,
	}
	f := NewFacade()
	f.OnDeviceAttached("kbd0", desc)

	report := [8]byte{0x02, 0, 0x04, 0, 0, 0, 0, 0}
	ok := f.OnInputReport("kbd0", report[:])
	require.True(t, ok)

	sink := NewNotifySink(4)
	f.Tick(sink)
	frame := <-sink.Frames()
	assert.Equal(t, FrameKeyboard, frame.Kind)
	assert.Equal(t, report[:], frame.Raw)
}

func TestFacadeConsumerPassThroughStripsReportID(t *testing.T) {
	// No Mouse/Keyboard application collection at all: classified as
	// neither keyboard nor pointing, so reports pass through opaquely as
	// consumer-control frames with the leading report-id byte stripped.
	desc := []byte{
		0x05, 0x0C, 0x09, 0x01, 0xA1, 0x01, // Consumer Page, Consumer Control app collection
		0x85, 0x03, // Report ID 3
		0x15, 0x00, 0x25, 0x01,
		0x75, 0x10, 0x95, 0x01,
		0x0A, 0x38, 0x02, // Usage (AC Pan)
		0x81, 0x02,
		0xC0,
	}
	f := NewFacade()
	f.OnDeviceAttached("consumer0", desc)

	ok := f.OnInputReport("consumer0", []byte{0x03, 0xAB, 0xCD})
	require.True(t, ok)

	sink := NewNotifySink(4)
	f.Tick(sink)
	frame := <-sink.Frames()
	assert.Equal(t, FrameConsumer, frame.Kind)
	assert.Equal(t, []byte{0xAB, 0xCD}, frame.Raw)
}

func TestFacadeTickRetriesAfterTransientFailure(t *testing.T) {
	f := NewFacade()
	f.OnDeviceAttached("mouse0", mouseDescriptorFixture())

	report := make([]byte, 8)
	report[0] = 1
	report[1] = 5
	require.True(t, f.OnInputReport("mouse0", report))

	notify := NewNotifySink(4)
	flaky := NewFlakySink(notify, 1) // fail every attempt
	f.Tick(flaky)
	assert.EqualValues(t, 1, f.Snapshot().SendFailure)

	select {
	case <-notify.Frames():
		t.Fatal("a failed send must not have reached the underlying sink's output")
	default:
	}

	f2 := NewFlakySink(notify, 0) // stop failing
	f.Tick(f2)
	assert.EqualValues(t, 1, f.Snapshot().SendSuccess)
	frame := <-notify.Frames()
	assert.Equal(t, FramePointing, frame.Kind)
}

func TestFacadeOnSinkReadyChangedClearsPointingDevices(t *testing.T) {
	f := NewFacade()
	f.OnDeviceAttached("mouse0", mouseDescriptorFixture())

	report := make([]byte, 8)
	report[0] = 1
	report[1] = 5
	require.True(t, f.OnInputReport("mouse0", report))

	f.OnSinkReadyChanged(false)

	sink := NewNotifySink(4)
	f.Tick(sink)
	select {
	case <-sink.Frames():
		t.Fatal("buffered motion must be discarded on a sink-not-ready transition")
	default:
	}
}

func TestFacadeOnLinkIntervalUpdatedReconfiguresResampler(t *testing.T) {
	f := NewFacade()
	f.OnDeviceAttached("mouse0", mouseDescriptorFixture())
	f.OnLinkIntervalUpdated(30) // 30 * 1.25ms = 37.5ms

	f.mu.RLock()
	ds := f.devices["mouse0"]
	f.mu.RUnlock()
	require.NotNil(t, ds.resampler)
	assert.EqualValues(t, 37500, ds.resampler.SendIntervalUs())
}

func TestFacadeOverflowCountIncludesPointingRingOverflow(t *testing.T) {
	f := NewFacade()
	f.OnDeviceAttached("mouse0", mouseDescriptorFixture())
	for i := 0; i < 200; i++ {
		report := make([]byte, 8)
		report[0] = 1
		report[1] = byte(i)
		f.OnInputReport("mouse0", report)
	}
	assert.Greater(t, f.OverflowCount(), uint64(0))
}
