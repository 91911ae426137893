package realtime

import (
	"sort"

	"github.com/comalice/hsmx"
)

// EventWithMeta adds sequencing metadata for deterministic ordering.
type EventWithMeta struct {
	Event       hsmx.Event
	SequenceNum uint64
	Priority    int
}

// sortEvents orders events deterministically: higher priority first, then
// earlier sequence number.
func sortEvents(events []EventWithMeta) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Priority != events[j].Priority {
			return events[i].Priority > events[j].Priority
		}
		return events[i].SequenceNum < events[j].SequenceNum
	})
}
