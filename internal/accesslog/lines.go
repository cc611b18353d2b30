package accesslog

import (
	"bytes"

	"github.com/leshachaplin/dudkstats/internal/domain"
)

type Stats struct {
	Lines   int
	Parsed  int
	Dropped int
}

// ParseLines runs every line of raw through ParseRow and keeps the matches in
// their original order. Lines may end in \n or \r\n and have no length limit.
func ParseLines(raw []byte) ([]domain.UsageEvent, Stats) {
	var (
		stats  Stats
		events = make([]domain.UsageEvent, 0)
	)
	for len(raw) > 0 {
		var line []byte
		if i := bytes.IndexByte(raw, '\n'); i >= 0 {
			line, raw = raw[:i], raw[i+1:]
		} else {
			line, raw = raw, nil
		}
		stats.Lines++

		event, ok := ParseRow(string(bytes.TrimSuffix(line, []byte{'\r'})))
		if !ok {
			stats.Dropped++
			continue
		}
		events = append(events, event)
	}
	stats.Parsed = len(events)

	return events, stats
}
