package ics

import (
	"errors"
	"os"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"preplycal/internal/fsutil"
	"preplycal/internal/model"
)

const (
	propTransp = ical.ComponentProperty("TRANSP")
	transpBusy = "OPAQUE"
	transpFree = "TRANSPARENT"
	crlf       = "\r\n"

	icsFileMode os.FileMode = 0o644
)

// Meta is the document-level metadata. TimeZone and Name are rendering
// hints for the consuming app (X-WR-TIMEZONE, X-WR-CALNAME); they do not
// change event timestamps, which are always written in UTC.
type Meta struct {
	ProductID string
	TimeZone  string
	Name      string
}

// Calendar accumulates exported events in insertion order.
type Calendar struct {
	cal   *ical.Calendar
	count int

	// now stamps DTSTAMP; replaced in tests.
	now func() time.Time
}

// NewCalendar creates an empty VCALENDAR carrying meta.
func NewCalendar(meta Meta) *Calendar {
	cal := ical.NewCalendar()
	cal.SetVersion("2.0")
	if meta.ProductID != "" {
		cal.SetProductId(meta.ProductID)
	}
	if meta.TimeZone != "" {
		cal.SetXWRTimezone(meta.TimeZone)
	}
	if meta.Name != "" {
		cal.SetXWRCalName(meta.Name)
	}
	return &Calendar{cal: cal, now: time.Now}
}

// Add appends ev as a VEVENT. Callers are expected to dedup uids first.
func (c *Calendar) Add(ev model.Event) {
	e := c.cal.AddEvent(ev.UID)
	e.SetDtStampTime(c.now().UTC())
	e.SetSummary(ev.Summary)
	e.SetStartAt(ev.Start.UTC())
	e.SetEndAt(ev.End.UTC())
	if ev.Busy {
		e.SetProperty(propTransp, transpBusy)
	} else {
		e.SetProperty(propTransp, transpFree)
	}
	c.count++
}

// Len reports the number of events added.
func (c *Calendar) Len() int { return c.count }

// Serialize renders the whole document as ICS text (CRLF line endings).
func (c *Calendar) Serialize() string {
	return c.cal.Serialize(ical.WithNewLineWindows)
}

// Preview returns up to n lines of the serialized document.
func (c *Calendar) Preview(n int) []string {
	return previewLines(c.Serialize(), n)
}

func previewLines(s string, n int) []string {
	if n <= 0 {
		return nil
	}
	lines := strings.Split(strings.TrimRight(s, crlf), crlf)
	if len(lines) > n {
		lines = lines[:n]
	}
	return lines
}

// WriteFile serializes the calendar once and replaces path with it.
func (c *Calendar) WriteFile(path string) error {
	if path == "" {
		return errors.New("ics: output path is empty")
	}
	return fsutil.WriteFileAtomic(path, []byte(c.Serialize()), icsFileMode)
}
