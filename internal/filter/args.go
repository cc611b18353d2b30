package filter

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/leshachaplin/dudkstats/internal/apperror"
)

const (
	KeyStart  = "start"
	KeyEnd    = "end"
	KeyClient = "client"
	KeyEvents = "events"

	DateLayout = "02-01-2006"
)

// ParseArgs builds Criteria from key=value tokens. An empty value leaves the
// criterion unset and a repeated key overrides the earlier one.
func ParseArgs(args []string) (Criteria, error) {
	var c Criteria
	for _, arg := range args {
		key, value, found := strings.Cut(arg, "=")
		if !found {
			return Criteria{}, usageError("argument %q is not in key=value form", arg)
		}

		switch key {
		case KeyStart, KeyEnd:
			var day civil.Date
			if value != "" {
				t, err := time.Parse(DateLayout, value)
				if err != nil {
					return Criteria{}, usageError("%s=%q is not a date in DD-MM-YYYY form", key, value)
				}
				day = civil.DateOf(t)
			}
			if key == KeyStart {
				c.Start = day
			} else {
				c.End = day
			}
		case KeyClient:
			c.ClientID = value
		case KeyEvents:
			c.Events = parseEvents(value)
		default:
			return Criteria{}, usageError(
				"unknown argument %q, expected one of %s, %s, %s, %s",
				key, KeyStart, KeyEnd, KeyClient, KeyEvents,
			)
		}
	}
	return c, nil
}

func parseEvents(value string) map[string]struct{} {
	if value == "" {
		return nil
	}
	events := make(map[string]struct{})
	for _, e := range strings.Split(value, ",") {
		if e = strings.TrimSpace(e); e != "" {
			events[e] = struct{}{}
		}
	}
	return events
}

func usageError(format string, args ...any) error {
	return apperror.New(fmt.Sprintf(format, args...), apperror.ExitUsage)
}
