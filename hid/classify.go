package hid

// keyboardConfirmReportCount is the minimum cumulative report_count on the
// Key Codes usage page, inside a Keyboard application collection, required
// to confirm a device as a keyboard. This filters composite devices (e.g.
// hubs) that advertise a Keyboard usage but define only a handful of
// modifier bits.
const keyboardConfirmReportCount = 3

// Classify decides whether a device is a keyboard and/or pointing device
// from its parsed layouts and raw descriptor bytes. It combines a layout
// heuristic (any layout with both X and Y present implies pointing) with an
// independent structural scan of application collections; the structural
// scan confirms keyboard, and contributes an additional pointing signal.
func Classify(desc []byte, layouts []Layout) (keyboard, pointing bool) {
	for _, l := range layouts {
		if l.X.present() && l.Y.present() {
			pointing = true
			break
		}
	}

	structKeyboard, structPointing := structuralScan(desc)
	return structKeyboard, pointing || structPointing
}

func structuralScan(desc []byte) (keyboard, pointing bool) {
	s := &structScanner{buf: desc, mouseDepth: -1, keyboardDepth: -1}
	s.run()
	return s.keyboardConfirmed, s.pointingHint
}

type structScanner struct {
	buf []byte
	pos int

	usagePage   uint16
	reportCount uint32

	local []uint32 // Usage and Usage Minimum values seen since the last Main item (collections only need the first)

	collDepth     int
	mouseDepth    int
	keyboardDepth int

	keyUsageBits      int
	keyboardConfirmed bool
	pointingHint      bool
}

func (s *structScanner) run() {
	for s.pos < len(s.buf) {
		it, ok := decodeItem(s.buf, s.pos)
		if !ok {
			return
		}
		s.pos += it.consumed
		if it.isLongItem() {
			continue
		}
		switch it.typ {
		case itemTypeGlobal:
			switch it.tag {
			case tagUsagePage:
				s.usagePage = uint16(it.raw)
			case tagReportCount:
				s.reportCount = it.raw
			}
		case itemTypeLocal:
			if it.tag == tagUsage || it.tag == tagUsageMin {
				val := it.raw
				if it.dataLen == 4 {
					val &= 0xFFFF
				}
				s.local = append(s.local, val)
			}
		case itemTypeMain:
			s.handleMain(it)
			s.local = nil
		}
	}
}

func (s *structScanner) handleMain(it item) {
	switch it.tag {
	case tagCollection:
		kind := uint8(it.raw)
		isApp := kind == CollectionApplication && s.usagePage == UsagePageGenericDesktop && len(s.local) > 0
		s.collDepth++
		if isApp {
			switch s.local[0] {
			case UsageMouse:
				if s.mouseDepth == -1 {
					s.mouseDepth = s.collDepth
					s.pointingHint = true
				}
			case UsageKeyboard:
				if s.keyboardDepth == -1 {
					s.keyboardDepth = s.collDepth
				}
			}
		}
	case tagEndCollect:
		s.collDepth--
		if s.mouseDepth != -1 && s.collDepth < s.mouseDepth {
			s.mouseDepth = -1
		}
		if s.keyboardDepth != -1 && s.collDepth < s.keyboardDepth {
			s.keyboardDepth = -1
		}
	case tagInput:
		insideKeyboard := s.keyboardDepth != -1 && s.collDepth >= s.keyboardDepth
		if insideKeyboard && s.usagePage == UsagePageKeyCodes && it.raw&MainConstant == 0 {
			s.keyUsageBits += int(s.reportCount)
			if s.keyUsageBits >= keyboardConfirmReportCount {
				s.keyboardConfirmed = true
			}
		}
	}
}
