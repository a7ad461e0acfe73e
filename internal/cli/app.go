package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fetrias/techtrack/internal/config"
	"github.com/fetrias/techtrack/internal/store"
	"github.com/fetrias/techtrack/internal/tech"
	"github.com/fetrias/techtrack/internal/tracker"
)

// app is the per-invocation wiring: storage, repository and output.
type app struct {
	opts    *RootOptions
	medium  store.Medium
	adapter *store.Adapter
	repo    *tracker.Repository
	out     *OutputFormatter
}

// notFoundError reports an id with no matching record.
type notFoundError struct {
	ID tech.ID
}

func (e *notFoundError) Error() string {
	return fmt.Sprintf("technology %d not found", e.ID)
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
		TraceID:   opts.TraceIDs.Generate(),
	}
}

// openApp opens the configured medium and loads the repository.
func openApp(ctx context.Context, opts *RootOptions, cmd *cobra.Command) (*app, error) {
	medium, err := store.Open(ctx, opts.Config.StoreOptions())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open storage", err)
	}

	adapter := store.NewAdapter(medium, opts.Config.Storage.Key)
	repo := tracker.New(adapter,
		tracker.WithClock(opts.Clock),
		tracker.WithLogger(opts.Logger),
	)

	res, err := repo.Load(ctx)
	if err != nil {
		medium.Close()
		return nil, WrapExitError(ExitCommandError, "failed to load technologies", err)
	}
	if res.Recovered != nil {
		opts.Logger.Warn("saved data was unreadable, starting with an empty list", "error", res.Recovered, "backup", res.BackupKey)
	}
	if res.Repairs.Any() {
		opts.Logger.Warn("repaired saved data", "dropped", res.Repairs.Dropped, "ids", res.Repairs.IDs, "statuses", res.Repairs.Statuses, "backup", res.BackupKey)
	}
	if res.Migration != nil && res.Migration.BackupKey != "" {
		opts.Logger.Info("migrated saved data", "from", res.Migration.FromVersion, "to", res.Migration.ToVersion, "backup", res.Migration.BackupKey)
	}

	return &app{
		opts:    opts,
		medium:  medium,
		adapter: adapter,
		repo:    repo,
		out:     newFormatter(opts, cmd),
	}, nil
}

func (a *app) Close() {
	if err := a.medium.Close(); err != nil {
		a.opts.Logger.Warn("closing storage", "error", err)
	}
}

// run opens the app, calls fn and reports any error in the configured format.
func run(opts *RootOptions, cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := openApp(ctx, opts, cmd)
	if err != nil {
		return reportError(opts, cmd, err)
	}
	defer a.Close()

	if err := fn(ctx, a); err != nil {
		return reportError(opts, cmd, err)
	}
	return nil
}

// reportError writes err to the user and returns an ExitError carrying the
// matching exit code.
func reportError(opts *RootOptions, cmd *cobra.Command, err error) error {
	code, exit, details := classify(err)

	f := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	if opts.TraceIDs != nil {
		f.TraceID = opts.TraceIDs.Generate()
	}
	_ = f.Error(code, err.Error(), details)

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		exitErr.Reported = true
		return exitErr
	}
	return &ExitError{Code: exit, Message: err.Error(), Reported: true}
}

func classify(err error) (code string, exit int, details interface{}) {
	var (
		ve *tech.ValidationError
		nf *notFoundError
		ce *config.Error
		pe *tech.PersistenceError
		ee *ExitError
	)
	switch {
	case errors.As(err, &ve):
		d := map[string]interface{}{"field": ve.Field}
		if ve.Index >= 0 {
			d["index"] = ve.Index
			d["title"] = ve.Title
		}
		return ErrCodeValidation, ExitFailure, d
	case errors.As(err, &nf):
		return ErrCodeNotFound, ExitFailure, map[string]interface{}{"id": nf.ID}
	case errors.As(err, &ce):
		return ErrCodeConfig, ExitCommandError, nil
	case errors.As(err, &pe):
		return ErrCodePersistence, ExitCommandError, map[string]interface{}{"op": pe.Op, "key": pe.Key}
	case errors.As(err, &ee):
		return ErrCodeCommand, ee.Code, nil
	default:
		return ErrCodeCommand, ExitCommandError, nil
	}
}
