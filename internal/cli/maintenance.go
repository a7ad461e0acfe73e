package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fetrias/techtrack/internal/store"
)

type backupList []string

func (l backupList) renderText(w io.Writer) error {
	if len(l) == 0 {
		_, err := fmt.Fprintln(w, "No backups.")
		return err
	}
	for _, k := range l {
		fmt.Fprintln(w, k)
	}
	return nil
}

// NewBackupsCommand creates the backups command.
func NewBackupsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "backups [key]",
		Short: "List migration backups, or print one",
		Long: `Before saved data is migrated to a newer layout, or rewritten because
some entries had to be repaired, the original is copied to a backup key.
With no argument, list those keys; with a key, print the backed-up data
exactly as it was stored. Only this collection's backup keys can be read.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, func(ctx context.Context, a *app) error {
				if len(args) == 0 {
					keys, err := a.adapter.Backups(ctx)
					if err != nil {
						return WrapExitError(ExitCommandError, "failed to list backups", err)
					}
					if keys == nil {
						keys = []string{}
					}
					return a.out.Success(backupList(keys))
				}

				data, err := a.adapter.ReadBackup(ctx, args[0])
				if errors.Is(err, store.ErrNotFound) {
					return NewExitError(ExitFailure, fmt.Sprintf("backup %q not found", args[0]))
				}
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to read backup", err)
				}
				if rootOpts.Format == "json" {
					return a.out.Success(map[string]string{"key": args[0], "data": string(data)})
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			})
		},
	}
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every technology",
		Long: `Delete every technology and save an empty list. Backups are kept.
Requires --yes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return reportError(rootOpts, cmd, NewExitError(ExitFailure, "refusing to delete all technologies without --yes"))
			}
			return run(rootOpts, cmd, func(ctx context.Context, a *app) error {
				n := a.repo.Len()
				if err := a.repo.Clear(ctx); err != nil {
					return err
				}
				return a.out.Success(message{
					text: fmt.Sprintf("Deleted %d technolog%s.", n, plural(n, "y", "ies")),
					data: map[string]interface{}{"deleted": n},
				})
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting everything")

	return cmd
}
