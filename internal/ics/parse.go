package ics

import (
	"errors"
	"fmt"
	"io"
	"strings"

	ical "github.com/arran4/golang-ical"

	"preplycal/internal/model"
)

// ReadEvents parses an ICS document back into events. It is the inverse of
// Calendar.Serialize and is used to check a written file.
//
//   - Every VEVENT must carry a UID, DTSTART and DTEND.
//   - Times are returned in UTC.
//   - TRANSP:OPAQUE (or no TRANSP at all, the RFC 5545 default) is busy.
func ReadEvents(r io.Reader) ([]model.Event, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("ics: parse: %w", err)
	}

	events := make([]model.Event, 0)
	for i, ve := range cal.Events() {
		ev, err := readVEvent(ve)
		if err != nil {
			return nil, fmt.Errorf("ics: vevent %d: %w", i, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

func readVEvent(ve *ical.VEvent) (model.Event, error) {
	var out model.Event

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return out, fmt.Errorf("DTSTART: %w", err)
	}
	end, err := ve.GetEndAt()
	if err != nil {
		return out, fmt.Errorf("DTEND: %w", err)
	}
	out.Start = start.UTC()
	out.End = end.UTC()

	out.Busy = true
	if p := ve.GetProperty(propTransp); p != nil {
		out.Busy = !strings.EqualFold(strings.TrimSpace(p.Value), transpFree)
	}

	return out, nil
}
