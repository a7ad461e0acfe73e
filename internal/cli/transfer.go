package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fetrias/techtrack/internal/transfer"
)

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import technologies from a JSON file",
		Long: `Import technologies from a file shaped {"technologies": [...]}.
Use - to read from stdin.

Every entry is checked before anything is added. Entries whose id already
exists are skipped, so importing the same file twice adds nothing.

Exit codes:
  0 - Import succeeded
  1 - The file failed validation
  2 - Command error (file not found, storage write failed)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, func(ctx context.Context, a *app) error {
				payload, err := readInput(cmd, args[0])
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to read import file", err)
				}
				report, err := transfer.Import(ctx, a.repo, payload)
				if err != nil {
					if report != nil && len(report.Added) > 0 {
						a.opts.Logger.Warn("import stopped part way", "added", len(report.Added))
					}
					return err
				}
				return a.out.Success(importView{report})
			})
		},
	}
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Output string
}

// exportResult describes an export written to a file.
type exportResult struct {
	File  string `json:"file"`
	Count int    `json:"count"`
}

func (r exportResult) renderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Exported %d technologies to %s\n", r.Count, r.File)
	return err
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all technologies as JSON",
		Long: `Export all technologies as an indented JSON array.

Without -o the snapshot is written to stdout. If -o names a directory the
file is named technologies-backup-YYYY-MM-DD.json inside it.

Examples:
  techtrack export > backup.json
  techtrack export -o ./backups/`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts.RootOptions, cmd, func(ctx context.Context, a *app) error {
				return runExport(opts, cmd, a)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write to this file or directory")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command, a *app) error {
	if opts.Output == "" {
		if opts.Format == "json" {
			return a.out.Success(recordList(a.repo.List()))
		}
		data, err := transfer.ExportSnapshot(a.repo)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}

	path := opts.Output
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, transfer.ExportFilename(opts.Clock.Now()))
	}

	data, err := transfer.ExportSnapshot(a.repo)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return WrapExitError(ExitCommandError, "failed to write export", err)
	}
	a.out.VerboseLog("wrote %d bytes", len(data))
	return a.out.Success(exportResult{File: path, Count: a.repo.Len()})
}
