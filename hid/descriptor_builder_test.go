package hid

// Minimal short-item descriptor builders for tests, grounded in the same
// byte-level construction style as a USB descriptor builder: plain append,
// no reflection, one function per item kind.

func itemBytes(tag, typ, sizeCode uint8, data ...byte) []byte {
	return append([]byte{tag | typ | sizeCode}, data...)
}

func usagePage1(v uint8) []byte   { return itemBytes(tagUsagePage, itemTypeGlobal, 1, v) }
func usage1(v uint8) []byte       { return itemBytes(tagUsage, itemTypeLocal, 1, v) }
func usageMin1(v uint8) []byte    { return itemBytes(tagUsageMin, itemTypeLocal, 1, v) }
func usageMax1(v uint8) []byte    { return itemBytes(tagUsageMax, itemTypeLocal, 1, v) }
func collection(v uint8) []byte   { return itemBytes(tagCollection, itemTypeMain, 1, v) }
func endCollection() []byte       { return []byte{tagEndCollect | itemTypeMain} }
func reportID1(v uint8) []byte    { return itemBytes(tagReportID, itemTypeGlobal, 1, v) }
func reportSize1(v uint8) []byte  { return itemBytes(tagReportSize, itemTypeGlobal, 1, v) }
func reportCount1(v uint8) []byte { return itemBytes(tagReportCount, itemTypeGlobal, 1, v) }
func logicalMin1(v int8) []byte   { return itemBytes(tagLogicalMin, itemTypeGlobal, 1, byte(v)) }
func logicalMax2(v int16) []byte {
	return itemBytes(tagLogicalMax, itemTypeGlobal, 2, byte(v), byte(v>>8))
}
func input1(flags uint8) []byte { return itemBytes(tagInput, itemTypeMain, 1, flags) }
func pushItem() []byte          { return []byte{tagPush | itemTypeGlobal} }
func popItem() []byte           { return []byte{tagPop | itemTypeGlobal} }

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// mouseDescriptorWithReportID builds a one-report-id mouse descriptor:
// 16 buttons, 12-bit signed X/Y, 8-bit signed wheel, 8 bits of constant
// padding, matching a composite device's embedded mouse application.
func mouseDescriptorWithReportID(id uint8) []byte {
	return concat(
		usagePage1(UsagePageGenericDesktop),
		usage1(UsageMouse),
		collection(CollectionApplication),
		usagePage1(UsagePageGenericDesktop),
		usage1(UsagePointer),
		collection(CollectionPhysical),
		reportID1(id),

		usagePage1(UsagePageButton),
		usageMin1(1),
		usageMax1(16),
		logicalMin1(0),
		logicalMax2(1),
		reportSize1(1),
		reportCount1(16),
		input1(MainVariable),

		usagePage1(UsagePageGenericDesktop),
		usage1(UsageX),
		usage1(UsageY),
		logicalMin1(-1),
		logicalMax2(2047),
		reportSize1(12),
		reportCount1(2),
		input1(MainVariable|MainRelative),

		usage1(UsageWheel),
		logicalMin1(-1),
		logicalMax2(127),
		reportSize1(8),
		reportCount1(1),
		input1(MainVariable|MainRelative),

		reportSize1(8),
		reportCount1(1),
		input1(MainConstant),

		endCollection(),
		endCollection(),
	)
}

// keyboardDescriptor builds a boot-protocol-shaped keyboard application
// collection: 8 modifier bits, 8 bits reserved padding, 6 key code array
// slots on the Key Codes usage page.
func keyboardDescriptor() []byte {
	return concat(
		usagePage1(UsagePageGenericDesktop),
		usage1(UsageKeyboard),
		collection(CollectionApplication),

		usagePage1(UsagePageKeyCodes),
		usageMin1(0xE0),
		usageMax1(0xE7),
		logicalMin1(0),
		logicalMax2(1),
		reportSize1(1),
		reportCount1(8),
		input1(MainVariable),

		reportSize1(8),
		reportCount1(1),
		input1(MainConstant),

		usagePage1(UsagePageKeyCodes),
		usageMin1(0x00),
		usageMax1(0xFF),
		logicalMin1(0),
		logicalMax2(255),
		reportSize1(8),
		reportCount1(6),
		input1(0), // array input: Data, Array, Absolute

		endCollection(),
	)
}
