// Package hid parses HID report descriptors (HID 1.11) into per-report
// bit-field layouts for pointing devices and keyboards, extracts signed and
// unsigned integer fields from raw input reports, and classifies a device
// as keyboard and/or pointing from its descriptor bytes alone.
package hid
