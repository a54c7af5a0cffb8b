package catalog

import "sync"

const maxTrackedKeys = 10000

// SeqTracker remembers, per caller key, the highest query sequence number
// answered so far. A response for an older sequence is stale: the caller has
// already issued (and been answered for) a newer query.
type SeqTracker struct {
	mu   sync.Mutex
	last map[string]uint64
}

func NewSeqTracker() *SeqTracker {
	return &SeqTracker{last: map[string]uint64{}}
}

// Observe records seq for key and reports whether it is the newest seen.
// Sequence 0 means the caller does not number its queries.
func (t *SeqTracker) Observe(key string, seq uint64) bool {
	if seq == 0 || key == "" {
		return true
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if prev, ok := t.last[key]; ok && seq < prev {
		return false
	}
	if len(t.last) >= maxTrackedKeys {
		t.last = map[string]uint64{}
	}
	t.last[key] = seq
	return true
}
