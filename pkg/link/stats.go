package link

import (
	"fmt"
	"sync/atomic"
)

// Stats counts link traffic. Fields are updated atomically; read them
// through Snapshot.
type Stats struct {
	Received      uint64
	Config        uint64
	Accepted      uint64
	ChecksumDrops uint64
	OversizeDrops uint64
	InboundDrops  uint64
	Transmitted   uint64
	OutboundDrops uint64
}

func (s *Stats) inc(counter *uint64) {
	atomic.AddUint64(counter, 1)
}

// Snapshot returns a consistent-per-field copy.
func (s *Stats) Snapshot() Stats {
	return Stats{
		Received:      atomic.LoadUint64(&s.Received),
		Config:        atomic.LoadUint64(&s.Config),
		Accepted:      atomic.LoadUint64(&s.Accepted),
		ChecksumDrops: atomic.LoadUint64(&s.ChecksumDrops),
		OversizeDrops: atomic.LoadUint64(&s.OversizeDrops),
		InboundDrops:  atomic.LoadUint64(&s.InboundDrops),
		Transmitted:   atomic.LoadUint64(&s.Transmitted),
		OutboundDrops: atomic.LoadUint64(&s.OutboundDrops),
	}
}

// String implements fmt.Stringer.
func (s Stats) String() string {
	return fmt.Sprintf("rx=%d cfg=%d ok=%d cksum=%d oversize=%d rxdrop=%d tx=%d txdrop=%d",
		s.Received, s.Config, s.Accepted, s.ChecksumDrops, s.OversizeDrops,
		s.InboundDrops, s.Transmitted, s.OutboundDrops)
}
