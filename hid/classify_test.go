package hid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyMouse(t *testing.T) {
	desc := mouseDescriptorWithReportID(1)
	layouts := Parse(desc)
	keyboard, pointing := Classify(desc, layouts)
	assert.False(t, keyboard)
	assert.True(t, pointing)
}

func TestClassifyKeyboard(t *testing.T) {
	desc := keyboardDescriptor()
	layouts := Parse(desc)
	keyboard, pointing := Classify(desc, layouts)
	assert.True(t, keyboard)
	assert.False(t, pointing)
}

func TestClassifyComposite(t *testing.T) {
	desc := concat(mouseDescriptorWithReportID(1), keyboardDescriptor())
	layouts := Parse(desc)
	keyboard, pointing := Classify(desc, layouts)
	assert.True(t, keyboard)
	assert.True(t, pointing)
}

// TestClassifyIgnoresSparseKeyboardUsage exercises the confirmation
// threshold: a collection that merely declares the Keyboard application
// usage without enough Key Codes input bits must not confirm as a keyboard.
func TestClassifyIgnoresSparseKeyboardUsage(t *testing.T) {
	desc := concat(
		usagePage1(UsagePageGenericDesktop),
		usage1(UsageKeyboard),
		collection(CollectionApplication),

		usagePage1(UsagePageKeyCodes),
		usageMin1(0xE0),
		usageMax1(0xE0),
		logicalMin1(0),
		logicalMax2(1),
		reportSize1(1),
		reportCount1(1),
		input1(MainVariable),

		endCollection(),
	)
	layouts := Parse(desc)
	keyboard, _ := Classify(desc, layouts)
	assert.False(t, keyboard)
}
