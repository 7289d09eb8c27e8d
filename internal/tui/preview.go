package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Digital-Shane/season-tidy/internal/core"
	"github.com/Digital-Shane/season-tidy/internal/session"
	"github.com/Digital-Shane/season-tidy/internal/tui/theme"
	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-runewidth"
)

// tableOverhead approximates the border and padding width of a rounded table
// per column.
const tableOverhead = 3

// RenderPlan renders the plan's operations with paths relative to the plan
// root. A positive width truncates the path columns to fit.
func RenderPlan(title string, plan *core.Plan, th theme.Theme, width int) string {
	if plan.Empty() {
		return ""
	}

	rows := make([][]string, 0, len(plan.Operations))
	for i, op := range plan.Operations {
		icon := th.Icon("episode")
		if op.Kind == core.KindDir {
			icon = th.Icon("folder")
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), icon, plan.Rel(op.Source), plan.Rel(op.Destination)})
	}

	footer := fmt.Sprintf("Total operations: %d", len(plan.Operations))
	return renderTable(th.HeaderStyle().Render(title), []string{"#", "", "From", "To"}, rows, []bool{true, false, false, false}, footer, width, 2)
}

// RenderLedger renders every applied ledger entry with paths relative to root,
// in application order.
func RenderLedger(title string, ledger *core.Ledger, root string, th theme.Theme, width int) string {
	if ledger.Len() == 0 {
		return ""
	}

	rel := &core.Plan{Root: root}
	rows := make([][]string, 0, ledger.Len())
	for i, e := range ledger.Entries() {
		icon := th.Icon("episode")
		if e.Type != core.OpRename || e.Kind == core.KindDir {
			icon = th.Icon("folder")
		}
		from := rel.Rel(e.Source)
		if e.Type == core.OpCreateDir {
			from = ""
		}
		to := rel.Rel(e.Destination)
		if e.Type == core.OpMergeDir {
			to = fmt.Sprintf("%s (+%d moved)", to, len(e.Children))
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), icon, string(e.Type), from, to})
	}

	footer := fmt.Sprintf("Total entries: %d", ledger.Len())
	return renderTable(th.HeaderStyle().Render(title), []string{"#", "", "Change", "From", "To"}, rows, []bool{true, false, false, false, false}, footer, width, 2)
}

// RenderOutliers renders the files flagged for deletion.
func RenderOutliers(outliers []core.Outlier, plan *core.Plan, th theme.Theme, width int) string {
	if len(outliers) == 0 {
		return ""
	}

	rows := make([][]string, 0, len(outliers))
	for _, o := range outliers {
		rows = append(rows, []string{th.Icon("delete"), o.Marker, plan.Rel(o.Path())})
	}

	title := th.HeaderStyle().Render("Files flagged for deletion")
	footer := fmt.Sprintf("Total flagged: %d", len(outliers))
	return renderTable(title, []string{"", "Marker", "File"}, rows, nil, footer, width, 1)
}

// RenderReport renders the failed and skipped results of a report. Successful
// results are only counted.
func RenderReport(title string, report core.Report, plan *core.Plan, th theme.Theme, width int) string {
	var rows [][]string
	for _, res := range report.Results {
		switch res.Status {
		case core.StatusFailed:
			rows = append(rows, []string{th.BadgeStyle(theme.BadgeError).Render(th.Icon("error") + " failed"), plan.Rel(res.Subject), res.Reason})
		case core.StatusSkipped:
			rows = append(rows, []string{th.BadgeStyle(theme.BadgeWarning).Render(th.Icon("warning") + " skipped"), plan.Rel(res.Subject), res.Reason})
		}
	}

	footer := fmt.Sprintf("Succeeded: %d  Skipped: %d  Failed: %d",
		report.Count(core.StatusSuccess), report.Count(core.StatusSkipped), report.Count(core.StatusFailed))
	if len(rows) == 0 {
		return th.HeaderStyle().Render(title) + "\n" + footer + "\n"
	}
	return renderTable(th.HeaderStyle().Render(title), []string{"", "Path", "Reason"}, rows, nil, footer, width, 2)
}

// RenderSessions renders journaled sessions for the undo listing.
func RenderSessions(summaries []session.Summary, th theme.Theme) string {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		meta := s.Session.Metadata
		status := th.BadgeStyle(theme.BadgeInfo).Render(th.Icon("undo") + " undoable")
		switch {
		case meta.RolledBack:
			status = th.BadgeStyle(theme.BadgeSuccess).Render(th.Icon("success") + " rolled back")
		case !s.Session.Undoable():
			status = "nothing to undo"
		case s.Session.PartiallyRolledBack():
			status = th.BadgeStyle(theme.BadgeWarning).Render(th.Icon("warning") + " partially rolled back")
		}
		rows = append(rows, []string{
			meta.SessionID,
			s.RelativeTime,
			meta.Series,
			meta.Root,
			fmt.Sprintf("%d/%d", meta.SuccessfulOps, meta.TotalOps),
			status,
		})
	}
	title := th.HeaderStyle().Render("Journaled sessions")
	return renderTable(title, []string{"Session", "When", "Series", "Root", "OK/Total", "Status"}, rows, []bool{false, false, false, false, true, false}, "", 0, 0)
}

// RenderKeyValues renders a two column setting/value table.
func RenderKeyValues(title string, rows [][]string, th theme.Theme) string {
	return renderTable(th.HeaderStyle().Render(title), []string{"Setting", "Value"}, rows, nil, "", 0, 0)
}

// renderTable draws a rounded table. When width is positive, the last wideCols
// columns share whatever width the other columns leave and are truncated.
func renderTable(title string, headers []string, rows [][]string, alignRight []bool, footer string, width, wideCols int) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	limit := 0
	if width > 0 && wideCols > 0 {
		fixed := 0
		for i := 0; i < columns-wideCols; i++ {
			fixed += maxCellWidth(headers[i], rows, i) + tableOverhead
		}
		limit = (width - fixed - 1) / wideCols
		limit -= tableOverhead
		if limit < 8 {
			limit = 8
		}
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if title != "" {
		tw.SetTitle("%s", title)
	}

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if limit > 0 && i >= columns-wideCols {
				cell = runewidth.Truncate(cell, limit, "…")
			}
			r[i] = cell
		}
		tw.AppendRow(r)
	}

	if footer != "" {
		tw.SetCaption("%s", footer)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(alignRight) && alignRight[i] {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return strings.TrimRight(tw.Render(), "\n") + "\n"
}

func maxCellWidth(header string, rows [][]string, col int) int {
	w := lipgloss.Width(header)
	for _, row := range rows {
		if col < len(row) {
			if cw := lipgloss.Width(row[col]); cw > w {
				w = cw
			}
		}
	}
	return w
}
