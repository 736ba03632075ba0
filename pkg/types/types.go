package types

// DefaultTopK controls how many rows we display per table.
const DefaultTopK = 15

// ProcessRecord is one process as observed in a single snapshot.
// MemoryBytes is only meaningful when Accessible is true and is 0 otherwise.
type ProcessRecord struct {
	PID         uint32
	RawName     string
	MemoryBytes uint64
	Accessible  bool
}

// ProcessGroup aggregates the accessible records sharing a canonical name.
type ProcessGroup struct {
	Name       string
	Instances  int
	TotalBytes uint64
}

// Summary counts records of one snapshot.
type Summary struct {
	Total           int
	Accessible      int
	Inaccessible    int
	AccessibleBytes uint64
}

// Delta is the change of one group's memory since the previous poll.
// Known is false on the first observation of a name, in which case Change is 0
// and must not be read as a flat series.
type Delta struct {
	Name    string
	Current uint64
	Change  int64
	Known   bool
}
