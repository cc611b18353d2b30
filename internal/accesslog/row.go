package accesslog

import (
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/leshachaplin/dudkstats/internal/domain"
)

// TimestampLayout is the bracketed common-log date, e.g. 10/Jan/2024:10:00:00 +0000.
const TimestampLayout = "2/Jan/2006:15:04:05 -0700"

var (
	rowRe   = regexp.MustCompile(`^\[(.*?)\]\s+(\S+)\s+(\d{3})`)
	eventRe = regexp.MustCompile(`^/dudk-metrics/(.*)/(.+)$`)
	uuidRe  = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

// ParseRow turns one raw log line into a UsageEvent. The boolean is false for
// every line that is not a well formed usage event; those lines are noise and
// carry no error.
func ParseRow(line string) (domain.UsageEvent, bool) {
	m := rowRe.FindStringSubmatch(line)
	if m == nil {
		return domain.UsageEvent{}, false
	}
	rawTime, path := m[1], m[2]

	ts, err := time.Parse(TimestampLayout, rawTime)
	if err != nil {
		return domain.UsageEvent{}, false
	}

	pm := eventRe.FindStringSubmatch(path)
	if pm == nil {
		return domain.UsageEvent{}, false
	}
	clientID, event := pm[1], pm[2]

	if !IsClientID(clientID) {
		return domain.UsageEvent{}, false
	}

	return domain.UsageEvent{
		Timestamp: ts,
		Event:     event,
		ClientID:  clientID,
	}, true
}

// IsClientID reports whether s is a lowercase, hyphenated RFC 4122 UUID with
// a version between 0 and 5.
func IsClientID(s string) bool {
	if !uuidRe.MatchString(s) {
		return false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	return id.Variant() == uuid.RFC4122 && id.Version() <= 5
}
