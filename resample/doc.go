// Package resample decouples a fast, irregular pointing-event producer from
// a slow, fixed-cadence notification sink. It buffers timestamped motion in
// a bounded ring, integrates a time window on each tick, saturates to the
// sink's field widths, and carries the remainder as residual motion into
// the next tick.
package resample
