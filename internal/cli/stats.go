package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/fetrias/techtrack/internal/query"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show counts and percentages per status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, func(ctx context.Context, a *app) error {
				return a.out.Success(statsView(query.Summarize(a.repo.List())))
			})
		},
	}
}

// UpcomingOptions holds flags for the upcoming command.
type UpcomingOptions struct {
	*RootOptions
	Days    int
	Overdue bool
}

// NewUpcomingCommand creates the upcoming command.
func NewUpcomingCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UpcomingOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List unfinished technologies with a deadline coming up",
		Long: `List technologies that are not completed and whose deadline falls
within the next --days days, soonest first. With --overdue, list those whose
deadline has already passed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts.RootOptions, cmd, func(ctx context.Context, a *app) error {
				now := opts.Clock.Now()
				if opts.Overdue {
					return a.out.Success(recordList(query.Overdue(a.repo.List(), now)))
				}
				within := time.Duration(opts.Days) * 24 * time.Hour
				return a.out.Success(recordList(query.Upcoming(a.repo.List(), now, within)))
			})
		},
	}

	cmd.Flags().IntVar(&opts.Days, "days", 30, "look-ahead window in days")
	cmd.Flags().BoolVar(&opts.Overdue, "overdue", false, "list overdue technologies instead")

	return cmd
}
