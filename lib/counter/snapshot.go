package counter

import (
	"sort"
	"strconv"
	"strings"
)

// Snapshot is a point-in-time copy of counter values keyed by counter name.
type Snapshot map[string]int64

// Keys returns the counter names in ascending byte order.
func (s Snapshot) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Total returns the sum of all counter values.
func (s Snapshot) Total() int64 {
	var total int64
	for _, v := range s {
		total += v
	}
	return total
}

// String renders one "key: value" line per counter, sorted by key.
func (s Snapshot) String() string {
	var sb strings.Builder
	for _, k := range s.Keys() {
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(strconv.FormatInt(s[k], 10))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --------------------------------------------------------------------------
// Snapshot Reader
// --------------------------------------------------------------------------

type snapshotReader struct {
	store ICounterStore
}

// NewSnapshotReader wraps store in a read-only facade. Collaborators that only
// export or report counters should depend on the returned reader, not the store.
func NewSnapshotReader(store ICounterStore) ISnapshotReader {
	return &snapshotReader{store: store}
}

func (r *snapshotReader) Snapshot() Snapshot {
	return r.store.Snapshot()
}
