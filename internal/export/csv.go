package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/leshachaplin/dudkstats/internal/domain"
)

// TimestampLayout is ISO-8601 with a numeric offset; time.RFC3339 parses it.
const TimestampLayout = "2006-01-02T15:04:05-07:00"

var header = []string{"timestamp", "event", "client"}

var ErrBadHeader = errors.New("unexpected csv header")

// Rows writes a header and one record per event in the given order. w is
// flushed but not closed.
func Rows(w io.Writer, events []domain.UsageEvent) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range events {
		if err := cw.Write([]string{e.Timestamp.Format(TimestampLayout), e.Event, e.ClientID}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// ReadRows parses the output of Rows back into events.
func ReadRows(r io.Reader) ([]domain.UsageEvent, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)

	first, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		if first[i] != header[i] {
			return nil, fmt.Errorf("%w: %v", ErrBadHeader, first)
		}
	}

	events := make([]domain.UsageEvent, 0)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		ts, err := time.Parse(time.RFC3339, record[0])
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", record[0], err)
		}
		events = append(events, domain.UsageEvent{
			Timestamp: ts,
			Event:     record[1],
			ClientID:  record[2],
		})
	}
	return events, nil
}
