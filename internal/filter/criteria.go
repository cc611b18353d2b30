package filter

import (
	"cloud.google.com/go/civil"

	"github.com/leshachaplin/dudkstats/internal/domain"
)

// Criteria holds the optional filters given on the command line. A zero
// civil.Date, an empty ClientID and an empty Events set impose no constraint.
type Criteria struct {
	Start    civil.Date
	End      civil.Date
	ClientID string
	Events   map[string]struct{}
}

func (c Criteria) IsZero() bool {
	return !c.Start.IsValid() && !c.End.IsValid() && c.ClientID == "" && len(c.Events) == 0
}

// Accepts reports whether e passes every configured criterion. Date bounds are
// inclusive and compared against the calendar date in the event's own offset.
func (c Criteria) Accepts(e domain.UsageEvent) bool {
	day := civil.DateOf(e.Timestamp)

	if c.Start.IsValid() && day.Before(c.Start) {
		return false
	}
	if c.End.IsValid() && day.After(c.End) {
		return false
	}
	if c.ClientID != "" && c.ClientID != e.ClientID {
		return false
	}
	if len(c.Events) > 0 {
		if _, ok := c.Events[e.Event]; !ok {
			return false
		}
	}
	return true
}

// Apply returns the events accepted by c, keeping their order.
func (c Criteria) Apply(events []domain.UsageEvent) []domain.UsageEvent {
	out := make([]domain.UsageEvent, 0, len(events))
	for _, e := range events {
		if c.Accepts(e) {
			out = append(out, e)
		}
	}
	return out
}
