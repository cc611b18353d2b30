package filter

import (
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/require"

	"github.com/leshachaplin/dudkstats/internal/apperror"
)

func TestParseArgs(t *testing.T) {
	cases := map[string]struct {
		args     []string
		expected Criteria
		errMsg   string
	}{
		"ok - no args": {},
		"ok - all keys": {
			args: []string{"start=01-01-2024", "end=31-01-2024", "client=abc", "events=initialised, configured ,"},
			expected: Criteria{
				Start:    civil.Date{Year: 2024, Month: time.January, Day: 1},
				End:      civil.Date{Year: 2024, Month: time.January, Day: 31},
				ClientID: "abc",
				Events:   map[string]struct{}{"initialised": {}, "configured": {}},
			},
		},
		"ok - empty value is unset": {
			args: []string{"client=", "events="},
		},
		"ok - last duplicate wins": {
			args:     []string{"client=a", "client=b"},
			expected: Criteria{ClientID: "b"},
		},
		"ok - value containing equals": {
			args:     []string{"client=a=b"},
			expected: Criteria{ClientID: "a=b"},
		},
		"error - bad date": {
			args:   []string{"start=2024-01-01"},
			errMsg: `start="2024-01-01" is not a date in DD-MM-YYYY form`,
		},
		"error - impossible date": {
			args:   []string{"end=31-02-2024"},
			errMsg: `end="31-02-2024" is not a date in DD-MM-YYYY form`,
		},
		"error - unknown key": {
			args:   []string{"clients=abc"},
			errMsg: `unknown argument "clients", expected one of start, end, client, events`,
		},
		"error - no equals": {
			args:   []string{"--help"},
			errMsg: `argument "--help" is not in key=value form`,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c, err := ParseArgs(tc.args)
			if tc.errMsg != "" {
				require.EqualError(t, err, tc.errMsg)

				var appErr apperror.Error
				require.True(t, errors.As(err, &appErr))
				require.Equal(t, apperror.ExitUsage, appErr.ExitCode())
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, c)
		})
	}
}
