package hid

// Field describes one bit-packed control within a report, relative to the
// start of the payload (after any report-id byte). A Field with BitSize == 0
// is absent from the layout.
type Field struct {
	BitOffset int
	BitSize   int
}

func (f Field) present() bool { return f.BitSize > 0 }

// Layout is the per-report-id bit-field description produced by Parse.
// ReportID == 0 means the report carries no leading report-id byte.
type Layout struct {
	ReportID       uint8
	ReportSizeBits int
	Buttons        Field
	X              Field
	Y              Field
	Wheel          Field
	Pan            Field
}

// Valid reports whether every populated field lies entirely within the
// layout's report size, per the invariant in spec §3/§8.
func (l Layout) Valid() bool {
	fits := func(f Field) bool {
		return !f.present() || f.BitOffset+f.BitSize <= l.ReportSizeBits
	}
	return fits(l.Buttons) && fits(l.X) && fits(l.Y) && fits(l.Wheel) && fits(l.Pan)
}

type usageRange struct {
	page uint16
	min  uint32
	max  uint32
	pair bool // built from a Usage Minimum/Maximum pair, eligible for merging
}

type globalState struct {
	usagePage   uint16
	logicalMin  int32
	logicalMax  int32
	reportSize  uint32
	reportCount uint32
	reportID    uint8
}

type localState struct {
	ranges     []usageRange
	pendingMin *uint32
	pendingMax *uint32
	pendingPg  uint16
}

func (l *localState) reset() {
	l.ranges = nil
	l.pendingMin = nil
	l.pendingMax = nil
}

func (l *localState) addUsage(page uint16, usage uint32) {
	l.ranges = append(l.ranges, usageRange{page: page, min: usage, max: usage, pair: false})
}

func (l *localState) addUsageMin(page uint16, v uint32) {
	l.pendingPg = page
	l.pendingMin = &v
	if l.pendingMax != nil {
		l.flushPair()
	}
}

func (l *localState) addUsageMax(page uint16, v uint32) {
	l.pendingPg = page
	l.pendingMax = &v
	if l.pendingMin != nil {
		l.flushPair()
	}
}

func (l *localState) flushPair() {
	r := usageRange{page: l.pendingPg, min: *l.pendingMin, max: *l.pendingMax, pair: true}
	if n := len(l.ranges); n > 0 {
		last := &l.ranges[n-1]
		if last.pair && last.page == r.page && last.max+1 == r.min {
			last.max = r.max
			l.pendingMin, l.pendingMax = nil, nil
			return
		}
	}
	l.ranges = append(l.ranges, r)
	l.pendingMin, l.pendingMax = nil, nil
}

// flatten expands ranges into individual usage values in declared order.
func (l *localState) flatten() []uint32 {
	var out []uint32
	for _, r := range l.ranges {
		for u := r.min; u <= r.max; u++ {
			out = append(out, u)
			if len(out) > 1<<16 {
				return out // runaway range guard; not a realistic descriptor
			}
		}
	}
	return out
}

func (l *localState) usageAt(i int) (uint32, bool) {
	flat := l.flatten()
	if len(flat) == 0 {
		return 0, false
	}
	if i < len(flat) {
		return flat[i], true
	}
	return flat[len(flat)-1], true
}

// pointingPage reports whether page is one this parser recognizes as
// carrying pointing-device controls.
func pointingPage(page uint16) bool {
	switch page {
	case UsagePageGenericDesktop, UsagePageButton, UsagePageConsumer:
		return true
	default:
		return false
	}
}

// Parse walks a short/long-item HID report descriptor and returns one Layout
// per distinct report-id encountered (or a single ReportID==0 layout if the
// descriptor never uses report ids). Parsing is best-effort: a malformed
// trailing section stops the scan but does not discard layouts already
// recognized from well-formed sections.
func Parse(desc []byte) []Layout {
	p := &parser{buf: desc}
	p.run()
	return p.finish()
}

type parser struct {
	buf   []byte
	pos   int
	g     globalState
	stack []globalState
	local localState

	collDepth    int
	mouseDepth   int // collDepth at which a Mouse application collection was entered, or -1
	usesReportID bool

	curBitOffset int
	order        []uint8
	layouts      map[uint8]*Layout
	cur          *Layout
}

func (p *parser) layoutFor(id uint8) *Layout {
	if p.layouts == nil {
		p.layouts = make(map[uint8]*Layout)
	}
	l, ok := p.layouts[id]
	if !ok {
		l = &Layout{ReportID: id}
		p.layouts[id] = l
		p.order = append(p.order, id)
	}
	return l
}

func (p *parser) run() {
	p.mouseDepth = -1
	p.cur = p.layoutFor(0)

	for p.pos < len(p.buf) {
		it, ok := decodeItem(p.buf, p.pos)
		if !ok {
			return // truncated item: stop, keep whatever we already built
		}
		p.pos += it.consumed
		if it.isLongItem() {
			continue
		}

		switch it.typ {
		case itemTypeGlobal:
			if !p.handleGlobal(it) {
				return
			}
		case itemTypeLocal:
			p.handleLocal(it)
		case itemTypeMain:
			p.handleMain(it)
		}
	}
}

func (p *parser) handleGlobal(it item) bool {
	switch it.tag {
	case tagUsagePage:
		p.g.usagePage = uint16(it.raw)
	case tagLogicalMin:
		p.g.logicalMin = it.signed()
	case tagLogicalMax:
		p.g.logicalMax = it.signed()
	case tagReportSize:
		p.g.reportSize = it.raw
	case tagReportCount:
		p.g.reportCount = it.raw
	case tagReportID:
		id := uint8(it.raw)
		if id != 0 {
			p.switchReport(id)
		}
		p.g.reportID = id
	case tagPush:
		if len(p.stack) >= maxStateStackDepth {
			return false // stack overflow: malformed, stop best-effort
		}
		p.stack = append(p.stack, p.g)
	case tagPop:
		if len(p.stack) == 0 {
			return false
		}
		p.g = p.stack[len(p.stack)-1]
		p.stack = p.stack[:len(p.stack)-1]
	}
	return true
}

func (p *parser) switchReport(id uint8) {
	p.cur.ReportSizeBits = p.curBitOffset
	p.curBitOffset = 0
	p.usesReportID = true
	p.cur = p.layoutFor(id)
}

func (p *parser) handleLocal(it item) {
	page := p.g.usagePage
	val := it.raw
	if it.dataLen == 4 {
		// 32-bit extended usage: high 16 bits are the usage page.
		page = uint16(it.raw >> 16)
		val = it.raw & 0xFFFF
	}
	switch it.tag {
	case tagUsage:
		p.local.addUsage(page, val)
	case tagUsageMin:
		p.local.addUsageMin(page, val)
	case tagUsageMax:
		p.local.addUsageMax(page, val)
	}
}

func (p *parser) handleMain(it item) {
	switch it.tag {
	case tagInput:
		p.handleMainInput(it.raw)
	case tagCollection:
		p.enterCollection(uint8(it.raw))
	case tagEndCollect:
		p.exitCollection()
	}
	p.local.reset()
}

func (p *parser) enterCollection(kind uint8) {
	isMouseApp := kind == CollectionApplication && p.g.usagePage == UsagePageGenericDesktop
	if isMouseApp {
		if usage, ok := p.lastBareUsage(); !ok || usage != UsageMouse {
			isMouseApp = false
		}
	}
	p.collDepth++
	if isMouseApp && p.mouseDepth == -1 {
		p.mouseDepth = p.collDepth
	}
}

func (p *parser) exitCollection() {
	p.collDepth--
	if p.mouseDepth != -1 && p.collDepth < p.mouseDepth {
		p.mouseDepth = -1
	}
}

func (p *parser) lastBareUsage() (uint32, bool) {
	if n := len(p.local.ranges); n > 0 {
		r := p.local.ranges[n-1]
		return r.min, !r.pair
	}
	return 0, false
}

func (p *parser) insideMouse() bool {
	return p.mouseDepth != -1 && p.collDepth >= p.mouseDepth
}

func (p *parser) handleMainInput(flags uint32) {
	count := int(p.g.reportCount)
	size := int(p.g.reportSize)
	bitsThisField := count * size
	defer func() { p.curBitOffset += bitsThisField }()

	if bitsThisField == 0 {
		return
	}
	if flags&MainConstant != 0 {
		return // padding
	}
	if !p.insideMouse() && !pointingPage(p.g.usagePage) {
		return
	}

	switch p.g.usagePage {
	case UsagePageButton:
		if p.local.hasUsageAtOrAbove(1) {
			p.assignButtons(count)
		}
		return
	}

	variable := flags&MainVariable != 0
	if !variable {
		return // array fields map usage ranges to values, not axis bits; no axis use here
	}

	for i := 0; i < count; i++ {
		usage, ok := p.local.usageAt(i)
		if !ok {
			continue
		}
		bitOffset := p.curBitOffset + i*size
		switch p.g.usagePage {
		case UsagePageGenericDesktop:
			switch usage {
			case UsageX:
				p.cur.X = Field{BitOffset: bitOffset, BitSize: size}
			case UsageY:
				p.cur.Y = Field{BitOffset: bitOffset, BitSize: size}
			case UsageWheel:
				p.cur.Wheel = Field{BitOffset: bitOffset, BitSize: size}
			}
		case UsagePageConsumer:
			if usage == UsageACPan {
				p.cur.Pan = Field{BitOffset: bitOffset, BitSize: size}
			}
		}
	}
}

func (l *localState) hasUsageAtOrAbove(min uint32) bool {
	for _, r := range l.ranges {
		if r.max >= min {
			return true
		}
	}
	return false
}

func (p *parser) assignButtons(count int) {
	if !p.cur.Buttons.present() {
		p.cur.Buttons = Field{BitOffset: p.curBitOffset, BitSize: count}
		return
	}
	p.cur.Buttons.BitSize += count
}

func (p *parser) finish() []Layout {
	p.cur.ReportSizeBits = p.curBitOffset

	out := make([]Layout, 0, len(p.order))
	for _, id := range p.order {
		l := p.layouts[id]
		if id == 0 && p.usesReportID && l.ReportSizeBits == 0 {
			continue // placeholder created before the first Report ID item
		}
		if len(out) == MaxLayouts {
			break
		}
		out = append(out, *l)
	}
	return out
}
