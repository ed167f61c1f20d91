package canopy

import "strconv"

// timestampKind orders the two sentinels around ordinary sequence values.
type timestampKind uint8

const (
	kindAlwaysValid timestampKind = iota
	kindSeq
	kindAlwaysStale
)

// Timestamp is a logical clock value used for cache validity decisions.
// It is either one of two sentinels or an ordinary sequence number, with the
// total order AlwaysValid < Seq(0) < Seq(1) < ... < AlwaysStale.
//
// The zero value is AlwaysValid, so nodes and arcs that were never stamped
// never invalidate anything.
type Timestamp struct {
	kind timestampKind
	seq  uint64
}

var (
	// AlwaysValid compares below every other timestamp.
	AlwaysValid = Timestamp{kind: kindAlwaysValid}
	// AlwaysStale compares above every other timestamp. A verification stamp
	// equal to AlwaysStale is never considered current.
	AlwaysStale = Timestamp{kind: kindAlwaysStale}
)

// Seq returns the ordinary timestamp n.
func Seq(n uint64) Timestamp {
	return Timestamp{kind: kindSeq, seq: n}
}

// IsStale reports whether t is the AlwaysStale sentinel.
func (t Timestamp) IsStale() bool { return t.kind == kindAlwaysStale }

// IsAlwaysValid reports whether t is the AlwaysValid sentinel.
func (t Timestamp) IsAlwaysValid() bool { return t.kind == kindAlwaysValid }

// Value returns the sequence number and true for ordinary timestamps.
func (t Timestamp) Value() (uint64, bool) {
	return t.seq, t.kind == kindSeq
}

// Compare returns -1, 0 or +1 depending on whether t sorts before, equal to,
// or after o.
func (t Timestamp) Compare(o Timestamp) int {
	if t.kind != o.kind {
		if t.kind < o.kind {
			return -1
		}
		return 1
	}
	if t.kind != kindSeq || t.seq == o.seq {
		return 0
	}
	if t.seq < o.seq {
		return -1
	}
	return 1
}

// Less reports whether t sorts strictly before o.
func (t Timestamp) Less(o Timestamp) bool { return t.Compare(o) < 0 }

// MaxTimestamp returns the later of a and b.
func MaxTimestamp(a, b Timestamp) Timestamp {
	if a.Less(b) {
		return b
	}
	return a
}

func (t Timestamp) String() string {
	switch t.kind {
	case kindAlwaysValid:
		return "valid"
	case kindAlwaysStale:
		return "stale"
	default:
		return strconv.FormatUint(t.seq, 10)
	}
}

// Clock issues non-decreasing sequence timestamps. It is not safe for
// concurrent use; a Clock belongs to one Graph.
type Clock struct {
	seq uint64
}

// Now returns the most recently issued timestamp.
func (c *Clock) Now() Timestamp { return Seq(c.seq) }

// Tick advances the clock and returns the new timestamp.
func (c *Clock) Tick() Timestamp {
	c.seq++
	return Seq(c.seq)
}
