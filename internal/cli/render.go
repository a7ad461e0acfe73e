package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fetrias/techtrack/internal/query"
	"github.com/fetrias/techtrack/internal/tech"
	"github.com/fetrias/techtrack/internal/transfer"
)

// recordList renders as a table in text mode.
type recordList []tech.Record

func (l recordList) renderText(w io.Writer) error {
	if len(l) == 0 {
		_, err := fmt.Fprintln(w, "No technologies found.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tTITLE\tDEADLINE")
	for _, r := range l {
		deadline := r.Deadline
		if deadline == "" {
			deadline = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.ID, r.Status, r.Title, deadline)
	}
	return tw.Flush()
}

// recordView renders one record with all its fields.
type recordView tech.Record

func (r recordView) renderText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", r.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", r.Title)
	fmt.Fprintf(tw, "Description:\t%s\n", r.Description)
	fmt.Fprintf(tw, "Status:\t%s\n", r.Status)
	if r.Notes != "" {
		fmt.Fprintf(tw, "Notes:\t%s\n", strings.ReplaceAll(r.Notes, "\n", "\n\t"))
	}
	if r.Deadline != "" {
		fmt.Fprintf(tw, "Deadline:\t%s\n", r.Deadline)
	}
	fmt.Fprintf(tw, "Created:\t%s\n", r.CreatedAt)
	return tw.Flush()
}

// message is a one-line result with structured data for JSON mode.
type message struct {
	text string
	data interface{}
}

func (m message) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.data)
}

func (m message) renderText(w io.Writer) error {
	_, err := fmt.Fprintln(w, m.text)
	return err
}

// statsView renders query.Stats.
type statsView query.Stats

func (s statsView) renderText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Total\t%d\t\n", s.Total)
	for _, st := range tech.AllStatuses {
		fmt.Fprintf(tw, "%s\t%d\t%d%%\t\n", st, s.Counts[st], s.Percents[st])
	}
	return tw.Flush()
}

// importView renders a transfer.Report.
type importView struct {
	*transfer.Report
}

func (v importView) renderText(w io.Writer) error {
	fmt.Fprintf(w, "Imported %d of %d technologies (%d already present).\n", len(v.Added), v.Total, v.Skipped)
	if v.DroppedDeadlines > 0 {
		fmt.Fprintf(w, "Dropped %d deadline(s) outside the allowed range.\n", v.DroppedDeadlines)
	}
	return nil
}
