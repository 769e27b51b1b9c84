package model

import "time"

// DateLayout is the ISO 8601 date form used for window bounds in API queries.
const DateLayout = "2006-01-02"

// Window is one bounded date sub-range of the export horizon.
// Start and End are calendar dates (midnight, local zone), both inclusive.
type Window struct {
	Start time.Time
	End   time.Time
}

// StartDate returns Start formatted as an ISO date.
func (w Window) StartDate() string { return w.Start.Format(DateLayout) }

// EndDate returns End formatted as an ISO date.
func (w Window) EndDate() string { return w.End.Format(DateLayout) }

func (w Window) String() string {
	return w.StartDate() + ".." + w.EndDate()
}

// Event is a single exported calendar entry. It is built once after
// classification and dedup and never mutated afterwards.
type Event struct {
	UID     string
	Summary string

	// Start / End are always UTC.
	Start time.Time
	End   time.Time

	// Busy marks the block as opaque (TRANSP:OPAQUE). Every exported
	// event is busy regardless of its source kind.
	Busy bool
}
