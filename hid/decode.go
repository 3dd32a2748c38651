package hid

// Report is the normalized result of decoding one pointing-device input
// report: button bitmap (low 5 bits meaningful) and signed motion deltas.
type Report struct {
	Buttons uint8
	DX      int16
	DY      int16
	Wheel   int8
}

// Decode applies the layout catalog for a device to a raw input report,
// producing a normalized Report. ok is false if the report is too short,
// references an unknown report id, or no layout in the catalog fits and no
// length-based fallback applies — the decoder never returns partial state.
func Decode(buf []byte, layouts []Layout) (Report, bool) {
	if len(layouts) == 0 {
		return decodeFallback(buf)
	}

	hasID := false
	for _, l := range layouts {
		if l.ReportID != 0 {
			hasID = true
			break
		}
	}

	var layout Layout
	idBytes := 0
	if hasID {
		if len(buf) < 1 {
			return Report{}, false
		}
		id := buf[0]
		found := false
		for _, l := range layouts {
			if l.ReportID == id {
				layout, found = l, true
				break
			}
		}
		if !found {
			return Report{}, false
		}
		idBytes = 1
	} else {
		layout = layouts[0]
	}

	payload := buf[idBytes:]
	if layout.ReportSizeBits > 8*len(payload) {
		return Report{}, false
	}

	var r Report
	if layout.Buttons.present() {
		r.Buttons = uint8(GetBitsU(payload, layout.Buttons.BitOffset, layout.Buttons.BitSize))
	}
	if layout.X.present() {
		r.DX = int16(GetBitsS(payload, layout.X.BitOffset, layout.X.BitSize))
	}
	if layout.Y.present() {
		r.DY = int16(GetBitsS(payload, layout.Y.BitOffset, layout.Y.BitSize))
	}
	if layout.Wheel.present() {
		r.Wheel = int8(GetBitsS(payload, layout.Wheel.BitOffset, layout.Wheel.BitSize))
	}
	return r, true
}

// decodeFallback handles devices with no usable descriptor, selecting a
// fixed layout by report length (boot-protocol compatible shapes).
func decodeFallback(buf []byte) (Report, bool) {
	switch len(buf) {
	case 3:
		return Report{
			Buttons: buf[0],
			DX:      int16(int8(buf[1])),
			DY:      int16(int8(buf[2])),
		}, true
	case 4:
		return Report{
			Buttons: buf[0],
			DX:      int16(int8(buf[1])),
			DY:      int16(int8(buf[2])),
			Wheel:   int8(buf[3]),
		}, true
	case 5, 8:
		return Report{
			Buttons: buf[1],
			DX:      int16(int8(buf[2])),
			DY:      int16(int8(buf[3])),
			Wheel:   int8(buf[4]),
		}, true
	default:
		return Report{}, false
	}
}
