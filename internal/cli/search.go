package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/fetrias/techtrack/internal/query"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	Interactive bool
}

// searchResult is one evaluated query.
type searchResult struct {
	Query   string     `json:"query"`
	Matches recordList `json:"matches"`
}

func (r searchResult) renderText(w io.Writer) error {
	if r.Query == "" {
		_, err := fmt.Fprintln(w, "(cleared)")
		return err
	}
	fmt.Fprintf(w, "%q: %d match%s\n", r.Query, len(r.Matches), plural(len(r.Matches), "", "es"))
	if len(r.Matches) == 0 {
		return nil
	}
	return r.Matches.renderText(w)
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search titles and descriptions",
		Long: `Search technology titles and descriptions, ignoring case.

With --interactive, each line read from stdin is treated as the current
contents of a search box: a search runs once input has been quiet for the
configured debounce delay (search.debounce, default 500ms), so only the
last line of a quick burst is evaluated. An empty line clears the results.

Examples:
  techtrack search react
  techtrack search --interactive`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.Interactive {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts.RootOptions, cmd, func(ctx context.Context, a *app) error {
				if opts.Interactive {
					return searchInteractive(ctx, a, cmd.InOrStdin())
				}
				q := strings.TrimSpace(args[0])
				return a.out.Success(searchResult{Query: q, Matches: recordList(query.Apply(a.repo.List(), "", q))})
			})
		},
	}

	cmd.Flags().BoolVarP(&opts.Interactive, "interactive", "i", false, "read queries from stdin, debounced")

	return cmd
}

// searchInteractive feeds stdin lines through a debouncer. At end of input
// any pending search runs immediately.
func searchInteractive(ctx context.Context, a *app, in io.Reader) error {
	var (
		mu      sync.Mutex
		outErr  error
		results = 0
	)
	emit := func(q string) {
		res := searchResult{Query: q, Matches: recordList(query.Search(a.repo.List(), q))}
		if res.Matches == nil {
			res.Matches = recordList{}
		}
		mu.Lock()
		defer mu.Unlock()
		results++
		if err := a.out.Success(res); err != nil && outErr == nil {
			outErr = err
		}
	}

	d := query.NewDebouncer(a.opts.Config.Search.Debounce, emit)
	defer d.Stop()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		d.Trigger(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading queries: %w", err)
	}
	d.Flush()
	d.Stop()

	mu.Lock()
	defer mu.Unlock()
	a.out.VerboseLog("%d search(es) evaluated", results)
	return outErr
}
