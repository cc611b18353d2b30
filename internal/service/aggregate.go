package service

import "github.com/leshachaplin/dudkstats/internal/domain"

// Aggregate tallies events per client and counts the initialised and
// configured events overall. Other event names only show up in client totals.
func Aggregate(events []domain.UsageEvent) domain.Report {
	report := domain.NewReport()

	for _, e := range events {
		tally := report.Clients[e.ClientID]
		tally.Total++

		switch e.Event {
		case domain.EventInitialised:
			tally.Initialised++
			report.Events[e.Event]++
		case domain.EventConfigured:
			tally.Configured++
			report.Events[e.Event]++
		}

		report.Clients[e.ClientID] = tally
	}

	return report
}
