// Package bridge wires the hid descriptor parser/classifier/decoder and the
// resample package into one core facade: a wired HID device attaches, its
// input reports are routed by role (keyboard, pointing, consumer control),
// and a Sink delivers the resulting reports to a wireless transport on a
// fixed tick cadence.
package bridge
