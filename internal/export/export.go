// Package export runs the window -> fetch -> classify -> dedup -> build
// pipeline once, sequentially.
package export

import (
	"context"
	"errors"
	"iter"
	"time"

	"preplycal/internal/ics"
	appLog "preplycal/internal/log"
	"preplycal/internal/model"
	"preplycal/internal/preply"
)

// Fetcher returns the raw nodes for one window. *preply.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, base *preply.Payload, w model.Window) ([]preply.Node, error)
}

// Exporter holds everything a run needs. Zero values are not usable;
// Fetcher, Payload and Meta are required.
type Exporter struct {
	Fetcher Fetcher
	Payload *preply.Payload
	Meta    ics.Meta

	// Suffix is appended to every summary ("Preply").
	Suffix string

	// UIDDomain follows the '@' in every uid ("preply").
	UIDDomain string

	// Location is only used to render the local-time column of the
	// per-event log line. Nil means time.Local.
	Location *time.Location
}

// Stats summarizes a run.
type Stats struct {
	Windows    int
	Nodes      int
	Skipped    int
	Duplicates int
	Exported   int
}

// Run fetches every window in order and returns the built calendar. The
// first fetch error aborts the run; nothing is returned for partial work.
func (e *Exporter) Run(ctx context.Context, windows iter.Seq[model.Window]) (*ics.Calendar, Stats, error) {
	var stats Stats
	if e.Fetcher == nil || e.Payload == nil {
		return nil, stats, errors.New("export: fetcher and payload are required")
	}

	loc := e.Location
	if loc == nil {
		loc = time.Local
	}

	cal := ics.NewCalendar(e.Meta)
	seen := ics.NewDeduper(e.UIDDomain)

	for w := range windows {
		appLog.Info("fetching range", "start", w.StartDate(), "end", w.EndDate())

		nodes, err := e.Fetcher.Fetch(ctx, e.Payload, w)
		if err != nil {
			return nil, stats, err
		}
		stats.Windows++
		stats.Nodes += len(nodes)

		for _, n := range nodes {
			c, ok := preply.Classify(n, e.Suffix).Get()
			if !ok {
				stats.Skipped++
				continue
			}

			appLog.Info("event",
				"type", c.Typename,
				"utc", c.Start.Format(time.RFC3339),
				"local", c.Start.In(loc).Format("2006-01-02 15:04 MST"),
			)

			uid, fresh := seen.Admit(c.IdentityKey)
			if !fresh {
				stats.Duplicates++
				continue
			}

			cal.Add(model.Event{
				UID:     uid,
				Summary: c.Summary,
				Start:   c.Start,
				End:     c.End,
				Busy:    true,
			})
		}
	}

	stats.Exported = seen.Len()
	return cal, stats, nil
}
