package hid

// Item prefix decoding (HID 1.11 §6.2.2.2). A short item's one-byte prefix
// packs a 2-bit size code, a 2-bit type, and a 4-bit tag.
const (
	itemSizeMask = 0x03
	itemTypeMask = 0x0C
	itemTagMask  = 0xF0

	itemTypeMain   = 0x00
	itemTypeGlobal = 0x04
	itemTypeLocal  = 0x08

	longItemPrefix = 0xFE
)

// Main item tags.
const (
	tagInput       = 0x80
	tagOutput      = 0x90
	tagFeature     = 0xB0
	tagCollection  = 0xA0
	tagEndCollect  = 0xC0
)

// Global item tags.
const (
	tagUsagePage    = 0x00
	tagLogicalMin   = 0x10
	tagLogicalMax   = 0x20
	tagPhysicalMin  = 0x30
	tagPhysicalMax  = 0x40
	tagUnitExponent = 0x50
	tagUnit         = 0x60
	tagReportSize   = 0x70
	tagReportID     = 0x80
	tagReportCount  = 0x90
	tagPush         = 0xA0
	tagPop          = 0xB0
)

// Local item tags.
const (
	tagUsage          = 0x00
	tagUsageMin       = 0x10
	tagUsageMax       = 0x20
	tagDesignatorIdx  = 0x30
	tagDesignatorMin  = 0x40
	tagDesignatorMax  = 0x50
	tagStringIdx      = 0x70
	tagStringMin      = 0x80
	tagStringMax      = 0x90
	tagDelimiter      = 0xA0
)

// Main item data bits (Input/Output/Feature), HID 1.11 §6.2.2.5.
const (
	MainConstant  = 1 << 0 // 0 = Data, 1 = Constant
	MainVariable  = 1 << 1 // 0 = Array, 1 = Variable
	MainRelative  = 1 << 2 // 0 = Absolute, 1 = Relative
)

// Collection types, HID 1.11 §6.2.2.6.
const (
	CollectionPhysical    = 0x00
	CollectionApplication = 0x01
	CollectionLogical     = 0x02
)

// Usage pages relevant to pointing devices and keyboards (HID Usage Tables).
const (
	UsagePageGenericDesktop = 0x01
	UsagePageKeyCodes       = 0x07
	UsagePageButton         = 0x09
	UsagePageConsumer       = 0x0C
)

// Generic Desktop usages.
const (
	UsagePointer  = 0x01
	UsageMouse    = 0x02
	UsageKeyboard = 0x06
	UsageX        = 0x30
	UsageY        = 0x31
	UsageWheel    = 0x38
)

// Consumer page usages.
const (
	UsageACPan = 0x0238
)

// depth of the global-state push/pop stack the parser maintains.
const maxStateStackDepth = 4

// maximum number of distinct report-id layouts tracked per device.
const MaxLayouts = 16
