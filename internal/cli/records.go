package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fetrias/techtrack/internal/query"
	"github.com/fetrias/techtrack/internal/tech"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Status string
	Query  string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List technologies",
		Long: `List technologies in the order they were added.

Examples:
  techtrack list
  techtrack list --status in-progress
  techtrack list --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts.RootOptions, cmd, func(ctx context.Context, a *app) error {
				var status tech.Status
				if opts.Status != "" {
					st, err := tech.ParseStatus(opts.Status)
					if err != nil {
						return err
					}
					status = st
				}
				return a.out.Success(recordList(query.Apply(a.repo.List(), status, opts.Query)))
			})
		},
	}

	cmd.Flags().StringVar(&opts.Status, "status", "", "only show this status (not-started|in-progress|completed|on-hold)")
	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "only show technologies matching this text")

	return cmd
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one technology",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, func(ctx context.Context, a *app) error {
				id, err := parseIDArg(args[0])
				if err != nil {
					return err
				}
				rec, ok := a.repo.Get(id)
				if !ok {
					return &notFoundError{ID: id}
				}
				return a.out.Success(recordView(rec))
			})
		},
	}
}

// AddOptions holds flags for the add command.
type AddOptions struct {
	*RootOptions
	Title       string
	Description string
	Status      string
	Notes       string
	Deadline    string
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a technology",
		Long: `Add a technology to track.

The title must be 2-50 characters and the description at least 10.
A deadline (YYYY-MM-DD) must be between today and five years from now.

Examples:
  techtrack add --title Go --description "Systems language from Google"
  techtrack add --title Rust --description "Memory safety without GC" --status in-progress --deadline 2027-06-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts.RootOptions, cmd, func(ctx context.Context, a *app) error {
				d := tech.Draft{
					Title:       opts.Title,
					Description: opts.Description,
					Notes:       opts.Notes,
					Deadline:    opts.Deadline,
				}
				if opts.Status != "" {
					st, err := tech.ParseStatus(opts.Status)
					if err != nil {
						return err
					}
					d.Status = st
				}
				rec, err := a.repo.Add(ctx, d)
				if err != nil {
					return err
				}
				a.out.VerboseLog("added technology %d", rec.ID)
				return a.out.Success(recordView(rec))
			})
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "title (required)")
	cmd.Flags().StringVar(&opts.Description, "description", "", "description (required)")
	cmd.Flags().StringVar(&opts.Status, "status", "", "initial status (default not-started)")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "free-form notes")
	cmd.Flags().StringVar(&opts.Deadline, "deadline", "", "deadline as YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

// patchFlags are the editable fields shared by update and bulk-update.
type patchFlags struct {
	Title       string
	Description string
	Status      string
	Notes       string
	Deadline    string
}

func (p *patchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.Title, "title", "", "new title")
	cmd.Flags().StringVar(&p.Description, "description", "", "new description")
	cmd.Flags().StringVar(&p.Status, "status", "", "new status")
	cmd.Flags().StringVar(&p.Notes, "notes", "", "new notes (empty clears)")
	cmd.Flags().StringVar(&p.Deadline, "deadline", "", "new deadline as YYYY-MM-DD (empty clears)")
}

// build returns a patch holding only the flags that were set.
func (p *patchFlags) build(cmd *cobra.Command) (tech.Patch, error) {
	var patch tech.Patch
	flags := cmd.Flags()
	if flags.Changed("title") {
		patch.Title = &p.Title
	}
	if flags.Changed("description") {
		patch.Description = &p.Description
	}
	if flags.Changed("status") {
		st, err := tech.ParseStatus(p.Status)
		if err != nil {
			return tech.Patch{}, err
		}
		patch.Status = &st
	}
	if flags.Changed("notes") {
		patch.Notes = &p.Notes
	}
	if flags.Changed("deadline") {
		patch.Deadline = &p.Deadline
	}
	if patch.IsEmpty() {
		return tech.Patch{}, tech.NewValidationError("", "nothing to update: set at least one of --title, --description, --status, --notes, --deadline")
	}
	return patch, nil
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	pf := &patchFlags{}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a technology",
		Long: `Change fields of a technology. Only the flags given are changed.

Examples:
  techtrack update 3 --status completed
  techtrack update 3 --notes "" --deadline 2027-01-15`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, func(ctx context.Context, a *app) error {
				id, err := parseIDArg(args[0])
				if err != nil {
					return err
				}
				patch, err := pf.build(cmd)
				if err != nil {
					return err
				}
				ok, err := a.repo.Update(ctx, id, patch)
				if err != nil {
					return err
				}
				if !ok {
					return &notFoundError{ID: id}
				}
				rec, _ := a.repo.Get(id)
				return a.out.Success(recordView(rec))
			})
		},
	}
	pf.register(cmd)

	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a technology",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, func(ctx context.Context, a *app) error {
				id, err := parseIDArg(args[0])
				if err != nil {
					return err
				}
				ok, err := a.repo.Delete(ctx, id)
				if err != nil {
					return err
				}
				if !ok {
					return &notFoundError{ID: id}
				}
				return a.out.Success(message{
					text: fmt.Sprintf("Deleted technology %d.", id),
					data: map[string]interface{}{"deleted": id},
				})
			})
		},
	}
}

// NewBulkUpdateCommand creates the bulk-update command.
func NewBulkUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	pf := &patchFlags{}
	var rawIDs []string

	cmd := &cobra.Command{
		Use:   "bulk-update",
		Short: "Change fields of several technologies at once",
		Long: `Apply the same change to several technologies in one write.
Unknown ids are ignored. If any merged record is invalid nothing changes.

Examples:
  techtrack bulk-update --ids 1,3 --status on-hold`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, func(ctx context.Context, a *app) error {
				ids := make([]tech.ID, 0, len(rawIDs))
				for _, raw := range rawIDs {
					id, err := parseIDArg(raw)
					if err != nil {
						return err
					}
					ids = append(ids, id)
				}
				patch, err := pf.build(cmd)
				if err != nil {
					return err
				}
				n, err := a.repo.BulkUpdate(ctx, ids, patch)
				if err != nil {
					return err
				}
				return a.out.Success(message{
					text: fmt.Sprintf("Updated %d technolog%s.", n, plural(n, "y", "ies")),
					data: map[string]interface{}{"updated": n},
				})
			})
		},
	}
	cmd.Flags().StringSliceVar(&rawIDs, "ids", nil, "comma-separated ids (required)")
	_ = cmd.MarkFlagRequired("ids")
	pf.register(cmd)

	return cmd
}

func parseIDArg(s string) (tech.ID, error) {
	id, err := tech.ParseID(s)
	if err != nil {
		return 0, tech.NewValidationError("id", fmt.Sprintf("invalid id %q", s))
	}
	return id, nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
