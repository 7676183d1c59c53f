package tracker

import "cmp"

// Source tells whether a snapshot was written on creation or by a matchup.
type Source int

const (
	SourceInitial Source = iota
	SourceEvent
)

func (s Source) String() string {
	switch s {
	case SourceInitial:
		return "initial"
	case SourceEvent:
		return "event"
	default:
		return "unknown"
	}
}

// Snapshot is a participant's rating after the event with the given label.
// Seq is a tracker-wide insertion sequence.
type Snapshot struct {
	Label  string
	Rating float64
	Source Source
	Seq    uint64
}

// History is the ordered list of a participant's snapshots.
type History struct {
	entries []Snapshot
}

// NewHistory builds a history from snapshots in insertion order.
func NewHistory(entries ...Snapshot) History {
	return History{entries: append([]Snapshot(nil), entries...)}
}

// AppendSnapshot adds s after every existing snapshot.
func (h *History) AppendSnapshot(s Snapshot) {
	h.entries = append(h.entries, s)
}

// ReplaceLatestSnapshot overwrites the most recent snapshot with s, or adds
// it when the history is empty.
func (h *History) ReplaceLatestSnapshot(s Snapshot) {
	if len(h.entries) == 0 {
		h.entries = append(h.entries, s)
		return
	}
	h.entries[len(h.entries)-1] = s
}

// Latest returns the most recent snapshot.
func (h History) Latest() (Snapshot, bool) {
	if len(h.entries) == 0 {
		return Snapshot{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// Entries returns a copy of all snapshots in insertion order.
func (h History) Entries() []Snapshot {
	return append([]Snapshot(nil), h.entries...)
}

// Len returns the number of snapshots.
func (h History) Len() int { return len(h.entries) }

// Participant is a rated entity. Values returned by the tracker are copies.
type Participant struct {
	ID      string
	Rating  float64
	Games   int
	History History
}

func (p Participant) clone() Participant {
	p.History = NewHistory(p.History.entries...)
	return p
}

// RatingAsOf returns the rating from the latest snapshot whose label is not
// after label, or def when no snapshot qualifies.
func (p Participant) RatingAsOf(label string, def float64) float64 {
	s, ok := p.SnapshotAsOf(label)
	if !ok {
		return def
	}
	return s.Rating
}

// SnapshotAsOf returns the latest snapshot whose label is not after label.
// On equal labels an event snapshot wins over the initial one, and a later
// snapshot over an earlier one. Empty labels never qualify.
func (p Participant) SnapshotAsOf(label string) (Snapshot, bool) {
	var (
		best  Snapshot
		found bool
	)
	for _, s := range p.History.entries {
		if s.Label == "" || CompareLabels(s.Label, label) > 0 {
			continue
		}
		if !found || newerSnapshot(s, best) {
			best, found = s, true
		}
	}
	return best, found
}

func newerSnapshot(a, b Snapshot) bool {
	if c := CompareLabels(a.Label, b.Label); c != 0 {
		return c > 0
	}
	if a.Source != b.Source {
		return a.Source == SourceEvent
	}
	return a.Seq > b.Seq
}

// ByRating orders participants from the highest rating to the lowest. Use it
// with a stable sort to keep equal ratings in their existing order.
func ByRating(a, b Participant) int {
	return cmp.Compare(b.Rating, a.Rating)
}
