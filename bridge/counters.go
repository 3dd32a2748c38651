package bridge

import "sync/atomic"

// Counters is an immutable snapshot of the facade's diagnostics.
type Counters struct {
	Overflow        uint64
	SendFailure     uint64
	SendSuccess     uint64
	ReportsDecoded  uint64
	ReportsRejected uint64
}

// counters holds the live, concurrently-updated diagnostics. Zero value is
// ready to use.
type counters struct {
	overflow        atomic.Uint64
	sendFailure     atomic.Uint64
	sendSuccess     atomic.Uint64
	reportsDecoded  atomic.Uint64
	reportsRejected atomic.Uint64
}

func (c *counters) snapshot() Counters {
	return Counters{
		Overflow:        c.overflow.Load(),
		SendFailure:     c.sendFailure.Load(),
		SendSuccess:     c.sendSuccess.Load(),
		ReportsDecoded:  c.reportsDecoded.Load(),
		ReportsRejected: c.reportsRejected.Load(),
	}
}
