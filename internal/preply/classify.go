package preply

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/mo"

	appLog "preplycal/internal/log"
)

// Kind is the identity-key prefix of an accepted node.
type Kind string

const (
	KindLesson   Kind = "lesson"
	KindReserved Kind = "reserved"
	KindTimeoff  Kind = "timeoff"
)

const defaultTimeoffTitle = "Time off"

// Classified is a node that passed classification.
type Classified struct {
	Kind     Kind
	Typename string
	Summary  string

	// IdentityKey is "<kind>:<id>:<dateStart>_<dateEnd>" using the raw
	// timestamp strings, so the same record always yields the same key.
	IdentityKey string

	// Start / End are UTC.
	Start time.Time
	End   time.Time
}

// Classify maps a raw node to a Classified entry, or None if the node is
// of an unknown type or does not qualify (unbooked lesson, missing
// recurring config, unparsable timestamps). suffix is appended to the
// summary, e.g. "Jane Doe Preply".
func Classify(n Node, suffix string) mo.Option[Classified] {
	var (
		kind    Kind
		id      string
		summary string
	)

	switch n.Typename {
	case TypeLesson:
		l := n.Lesson
		if l == nil || !bookedStatus(l.Status) {
			return mo.None[Classified]()
		}
		name := l.Client.FullName()
		if name == "" {
			appLog.Debug("lesson without client name skipped", "id", l.ID)
			return mo.None[Classified]()
		}
		kind = KindLesson
		id = l.ID.String()
		if id == "" {
			id = "unknown"
		}
		summary = name

	case TypeReserved:
		c := n.RecurrentLessonConfig
		if c == nil {
			return mo.None[Classified]()
		}
		name := c.Client.FullName()
		if name == "" {
			appLog.Debug("reserved slot without client name skipped", "id", n.ID)
			return mo.None[Classified]()
		}
		kind = KindReserved
		id = n.ID.String()
		summary = "r " + name

	case TypeTimeoff:
		title := defaultTimeoffTitle
		if n.Title != nil && strings.TrimSpace(*n.Title) != "" {
			title = *n.Title
		}
		kind = KindTimeoff
		id = n.ID.String()
		summary = title

	default:
		return mo.None[Classified]()
	}

	start, end, err := parseSpan(n.DateStart, n.DateEnd)
	if err != nil {
		appLog.Error("node with bad timestamps skipped", err, "type", n.Typename, "id", id)
		return mo.None[Classified]()
	}

	if suffix != "" {
		summary += " " + suffix
	}

	return mo.Some(Classified{
		Kind:        kind,
		Typename:    n.Typename,
		Summary:     summary,
		IdentityKey: fmt.Sprintf("%s:%s:%s_%s", kind, id, n.DateStart, n.DateEnd),
		Start:       start,
		End:         end,
	})
}

func bookedStatus(s string) bool {
	return s == "BOOKED" || s == "SCHEDULED"
}

// parseSpan parses zone-aware RFC 3339 instants and normalizes them to UTC.
func parseSpan(rawStart, rawEnd string) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, rawStart)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("dateStart: %w", err)
	}
	end, err := time.Parse(time.RFC3339, rawEnd)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("dateEnd: %w", err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New("dateEnd before dateStart")
	}
	return start.UTC(), end.UTC(), nil
}
