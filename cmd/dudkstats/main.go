package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leshachaplin/dudkstats/app"
	"github.com/leshachaplin/dudkstats/internal/apperror"
	"github.com/leshachaplin/dudkstats/internal/config"
)

func main() {
	cmd := &cobra.Command{
		Use:   "dudkstats [start=DD-MM-YYYY] [end=DD-MM-YYYY] [client=<id>] [events=<name>,...]",
		Short: "Collect usage statistics from a remote access log",
		Long: `dudkstats reads the access log named by DUDK_SERVER_PATH on DUDK_SERVER_HOST over SSH,
writes the matching usage events to stats.csv and prints per-event and per-client totals.`,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(config.Load)
			if err != nil {
				return err
			}
			return a.Run(cmd.Context(), args)
		},
	}

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(report(err))
	}
}

func report(err error) int {
	var appErr apperror.Error
	if errors.As(err, &appErr) {
		for _, line := range appErr.Lines() {
			fmt.Fprintln(os.Stderr, line)
		}
		return appErr.ExitCode()
	}

	fmt.Fprintf(os.Stderr, "error: %s\n", err)
	return 1
}
