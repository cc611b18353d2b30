package service

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	"github.com/leshachaplin/dudkstats/internal/domain"
)

// WriteSummary prints the confirmation line followed by the event and client
// tallies as indented JSON with sorted keys.
func WriteSummary(w io.Writer, outputPath string, report domain.Report) error {
	events, err := json.MarshalIndent(report.Events, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal event stats: %w", err)
	}
	clients, err := json.MarshalIndent(report.Clients, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal client stats: %w", err)
	}

	_, err = fmt.Fprintf(w,
		"Raw stats have been written to %s\n\nEvent stats\n===========\n\n%s\n\nClient stats\n============\n\n%s\n",
		outputPath, events, clients,
	)
	return err
}
