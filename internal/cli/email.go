package cli

import (
	"context"
	"errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"passguard/internal/util"
	"passguard/pkg/breachdir"
	"strings"
	"time"
)

var (
	emailCmd = &cobra.Command{
		Use:   "email <emails...>",
		Short: "Check email addresses against public breach directories",
		Long: "Check email addresses against XposedOrNot and LeakCheck. Results from both " +
			"directories are merged; if one directory is down the other still reports.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return emailCommand(args)
		},
	}
)

func init() {
	rootCmd.AddCommand(emailCmd)
}

func emailCommand(emails []string) error {
	util.ApplyCliSettings(verbose, profile, pprofPort)

	aggregator := breachdir.NewAggregator(10 * time.Second)

	for _, email := range emails {
		report, err := aggregator.CheckEmail(context.Background(), email)
		if err != nil {
			if errors.Is(err, breachdir.ErrInvalidEmail) || errors.Is(err, breachdir.ErrAllSourcesUnavailable) {
				log.Error().Err(err).Msgf("could not check %s", email)
				continue
			}
			return err
		}

		if report.Total > 0 {
			log.Warn().Msgf("EXPOSED %s found in %d breach(es)", email, report.Total)
			for _, b := range report.Breaches {
				printBreach(b)
			}
		} else {
			log.Info().Msgf("Safe. %s not found in any known breaches", email)
		}

		for _, src := range report.Sources {
			if src.Status == breachdir.StatusOK {
				log.Debug().Msgf("source %s: ok", src.Name)
			} else {
				log.Warn().Msgf("source %s: %s. Coverage is degraded", src.Name, src.Status)
			}
		}
	}

	return nil
}

func printBreach(b breachdir.Breach) {
	event := log.Warn()
	if !b.Date.IsZero() {
		event = event.Str("date", b.Date.Format("2006-01"))
	}
	if len(b.Fields) > 0 {
		event = event.Str("exposed", strings.Join(b.Fields, ", "))
	}
	event.Msgf("- %s [%s]", b.Name, strings.Join(b.Sources, ", "))
}
