package dashboard

import "sync/atomic"

// Sequence hands out monotonically increasing tickets. A result is only
// applied when its ticket is still the latest one issued.
type Sequence struct {
	n atomic.Uint64
}

func (s *Sequence) Next() uint64 {
	return s.n.Add(1)
}

func (s *Sequence) IsLatest(ticket uint64) bool {
	return s.n.Load() == ticket
}
