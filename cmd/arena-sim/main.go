// Command arena-sim plays matches against a running arena server and
// verifies the results.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/troxeldj/greek-god-arena/internal/simulate"
	"github.com/troxeldj/greek-god-arena/pkg/logger"
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := Root()
	root.SetArgs(os.Args[1:])
	if err := root.ExecuteContext(ctx); err != nil {
		logger.Get().Error(ctx, "arena-sim failed", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

// Root builds the arena-sim command tree.
func Root() *cobra.Command {
	root := &cobra.Command{
		Use:  "arena-sim",
		Args: cobra.NoArgs,

		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("verbose"); v {
				return logger.SetLevelString("debug")
			}
			return nil
		},
	}

	root.PersistentFlags().BoolP("verbose", "v", false, "Log every match")
	root.AddCommand(Play())
	return root
}

// Play builds the play command.
func Play() *cobra.Command {
	cfg := simulate.NewConfig()

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play matches against a server and check the standings",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Verbose, _ = cmd.Flags().GetBool("verbose")

			stats, err := simulate.Run(cmd.Context(), cfg, logger.Get().Named("arena-sim"))
			fmt.Fprintf(cmd.OutOrStdout(),
				"played %d, won %d, stalled %d, failed %d, rounds %d, ties %d, in %s\n",
				stats.MatchesPlayed, stats.MatchesWon, stats.MatchesStalled, stats.MatchesFailed,
				stats.Rounds, stats.Ties, stats.Duration.Round(time.Millisecond))
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "Base URL of the arena server")
	flags.IntVar(&cfg.Matches, "matches", cfg.Matches, "Number of matches to play")
	flags.IntVar(&cfg.Workers, "workers", cfg.Workers, "Number of concurrent sessions")
	flags.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Pairing seed; 0 seeds from the clock")
	flags.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP request timeout")
	flags.DurationVar(&cfg.SettleTimeout, "settle", cfg.SettleTimeout, "How long to wait for the standings to catch up")
	flags.IntVar(&cfg.MaxRounds, "max-rounds", cfg.MaxRounds, "Rounds after which a tied match is abandoned")
	return cmd
}
