package main

import (
	"fmt"
	"io"

	"progress-pulse/internal/publish/outbox"
	"progress-pulse/internal/types"

	"github.com/jedib0t/go-pretty/v6/table"
)

func asideSummary(c types.ComposedContent) string {
	switch {
	case c.Aside == types.AsideNone || c.Aside == "":
		return "none"
	case c.AsideDropped:
		return fmt.Sprintf("%s (dropped for length)", c.Aside)
	case c.AsideRemote:
		return fmt.Sprintf("%s (remote)", c.Aside)
	default:
		return fmt.Sprintf("%s (local)", c.Aside)
	}
}

// printPreview prints the run summary and the post. history is the outbox for the record's day, this run included.
func printPreview(w io.Writer, res *types.RunResult, limit int, history []outbox.Entry) {
	rec := res.Record

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle("Year progress %d", rec.Year)
	t.AppendHeader(table.Row{"Field", "Value"})

	t.AppendRows([]table.Row{
		{"Date", rec.Today.Format("2006-01-02")},
		{"Include today", rec.IncludeToday},
		{"Days passed", fmt.Sprintf("%d / %d", rec.DaysPassed, rec.TotalDays)},
		{"Days remaining", rec.DaysRemaining},
		{"Complete", fmt.Sprintf("%.1f%%", rec.PercentComplete)},
		{"Weeks remaining", rec.WeeksRemaining},
		{"Months remaining", rec.MonthsRemaining},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Aside", asideSummary(res.Content)},
		{"Text weight", fmt.Sprintf("%d / %d", res.Content.TextWeight, limit)},
		{"Truncated", res.Content.Truncated},
		{"Chart", fmt.Sprintf("%d bytes", len(res.Content.ChartImage))},
		{"Written to", res.Post.URL},
		{"Posts that day", len(history)},
		{"Run", res.RunID},
	})
	t.Render()

	fmt.Fprintln(w)
	fmt.Fprintln(w, res.Content.PostText)
}
