package cli

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/dakala/h5p-xapi/pkg/cli/config"
	"github.com/dakala/h5p-xapi/pkg/utils/logging"
	"github.com/dakala/h5p-xapi/pkg/utils/safe"
)

// cmdPrune removes correlation entries whose completion statement never
// arrived. The pending result rows they point at stay: each is referenced
// by the summary of its first statement and "viewed but never scored" is
// a valid terminal state. Nothing runs this automatically; abandoned
// entries live forever unless an operator invokes it.
func cmdPrune() *cli.Command {
	var repoCfg config.Repository
	var olderThan time.Duration

	flags := []cli.Flag{
		&cli.DurationFlag{
			Name:        "older-than",
			Usage:       "Remove correlation entries older than this duration",
			Value:       30 * 24 * time.Hour,
			Sources:     cli.EnvVars("H5P_XAPI_PRUNE_OLDER_THAN"),
			Destination: &olderThan,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "prune",
		Usage: "Remove abandoned correlation entries",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			removed, err := repo.Correlations().DeleteOlderThan(ctx, time.Now().Add(-olderThan))
			if err != nil {
				return goerr.Wrap(err, "failed to prune correlation entries")
			}

			logging.Default().Info("Pruned correlation entries",
				"removed", removed,
				"older_than", olderThan.String(),
			)
			return nil
		},
	}
}
