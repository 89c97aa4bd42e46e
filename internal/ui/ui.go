// Package ui renders command output for the terminal.
package ui

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/spf13/cast"

	"github.com/satishbabariya/datatables-go/internal/core/query/domain"
)

var (
	// Out receives regular output.
	Out io.Writer = os.Stdout
	// Err receives error output.
	Err io.Writer = os.Stderr
)

var (
	// Colors
	PrimaryColor   = lipgloss.Color("#00D9FF")
	SuccessColor   = lipgloss.Color("#00FF88")
	WarningColor   = lipgloss.Color("#FFB800")
	ErrorColor     = lipgloss.Color("#FF4444")
	SecondaryColor = lipgloss.Color("#6C757D")

	// Styles
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			MarginBottom(1)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	SecondaryStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor)
)

// PrintHeader prints a boxed header
func PrintHeader(title string, subtitle string) {
	header := lipgloss.NewStyle().
		Width(terminalWidth()).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Padding(1, 2).
		Render(
			lipgloss.JoinVertical(
				lipgloss.Center,
				TitleStyle.Render(title),
				SecondaryStyle.Render(subtitle),
			),
		)

	fmt.Fprintln(Out, header)
	fmt.Fprintln(Out)
}

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...interface{}) {
	fmt.Fprintln(Out, SuccessStyle.Render("✓ "+fmt.Sprintf(format, args...)))
}

// PrintError prints an error message
func PrintError(format string, args ...interface{}) {
	fmt.Fprintln(Err, ErrorStyle.Render("✗ "+fmt.Sprintf(format, args...)))
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...interface{}) {
	fmt.Fprintln(Out, WarningStyle.Render("⚠ "+fmt.Sprintf(format, args...)))
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...interface{}) {
	fmt.Fprintln(Out, InfoStyle.Render("ℹ "+fmt.Sprintf(format, args...)))
}

// PrintStep prints a step indicator
func PrintStep(step int, total int, message string) {
	stepStyle := SecondaryStyle.Render(fmt.Sprintf("[%d/%d]", step, total))
	fmt.Fprintf(Out, "%s %s\n", stepStyle, message)
}

// PrintRows prints rows as a table. Columns are sorted by name; nested
// relation values are summarized by their length.
func PrintRows(rows []domain.Row) error {
	if len(rows) == 0 {
		PrintInfo("no rows")
		return nil
	}

	headers := RowColumns(rows)
	data := pterm.TableData{headers}
	for _, row := range rows {
		line := make([]string, len(headers))
		for i, h := range headers {
			line[i] = FormatValue(row[h])
		}
		data = append(data, line)
	}

	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(Out, out)
	return nil
}

// RowColumns returns the sorted union of the keys of rows.
func RowColumns(rows []domain.Row) []string {
	seen := make(map[string]struct{})
	for _, row := range rows {
		for k := range row {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// FormatValue renders a cell value.
func FormatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []domain.Row:
		return fmt.Sprintf("[%d rows]", len(val))
	}
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	return fmt.Sprint(v)
}

// QueriesMarkdown renders debug queries as a markdown document.
func QueriesMarkdown(q domain.DebugQueries) string {
	var b strings.Builder
	for _, section := range []struct{ title, sql string }{
		{"data", q.Data},
		{"count_all", q.CountAll},
		{"count_filtered", q.CountFiltered},
	} {
		fmt.Fprintf(&b, "## %s\n\n```sql\n%s\n```\n\n", section.title, section.sql)
	}
	return b.String()
}

// PrintQueries renders debug queries through glamour.
func PrintQueries(q domain.DebugQueries) error {
	return PrintMarkdown(QueriesMarkdown(q))
}

// PrintSQL prints a single statement with a colored label.
func PrintSQL(label, sql string) {
	color.New(color.FgCyan, color.Bold).Fprintf(Out, "-- %s\n", label)
	fmt.Fprintln(Out, sql)
}

// PrintMarkdown renders markdown content
func PrintMarkdown(content string) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(terminalWidth()),
	)
	if err != nil {
		return err
	}

	out, err := r.Render(content)
	if err != nil {
		return err
	}

	fmt.Fprint(Out, out)
	return nil
}

func terminalWidth() int {
	if w := pterm.GetTerminalWidth(); w > 0 && w < 200 {
		return w
	}
	return 80
}
