package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/adfharrison1/bookreport/pkg/domain"
)

// columnOrder puts known book fields first; other fields follow sorted
var columnOrder = []string{
	domain.IDField,
	domain.FieldTitle,
	domain.FieldAuthor,
	domain.FieldGenre,
	domain.FieldPublishedYear,
	domain.FieldPrice,
	domain.FieldInStock,
	domain.FieldPages,
	domain.FieldPublisher,
}

// ConsoleRenderer writes headings and go-pretty tables to a writer
type ConsoleRenderer struct {
	out     io.Writer
	heading *color.Color
	failed  *color.Color
}

// NewConsoleRenderer renders to out; colour is used only when useColor is
// set and the color package detected a terminal
func NewConsoleRenderer(out io.Writer, useColor bool) *ConsoleRenderer {
	heading := color.New(color.FgCyan, color.Bold)
	failed := color.New(color.FgRed)
	if !useColor {
		heading.DisableColor()
		failed.DisableColor()
	}
	return &ConsoleRenderer{out: out, heading: heading, failed: failed}
}

func (cr *ConsoleRenderer) Heading(op Operation) {
	fmt.Fprintln(cr.out)
	cr.heading.Fprintf(cr.out, "%s:\n", op.Title)
}

func (cr *ConsoleRenderer) Result(op Operation, res Result) error {
	switch op.Kind {
	case KindUpdate:
		fmt.Fprintf(cr.out, "Matched %d, modified %d\n", res.Update.Matched, res.Update.Modified)
	case KindDelete:
		fmt.Fprintf(cr.out, "Deleted %d\n", res.Delete.Deleted)
	case KindIndex:
		fmt.Fprintf(cr.out, "Index %s ready\n", res.IndexName)
	case KindExplain:
		out, err := json.MarshalIndent(res.Explain, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode explain output: %w", err)
		}
		fmt.Fprintln(cr.out, string(out))
	default:
		fmt.Fprintln(cr.out, RenderTable(res.Rows))
	}
	return nil
}

// Summary prints one line per executed operation
func (cr *ConsoleRenderer) Summary(s *Summary) {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"#", "operation", "count", "duration", "status"})
	for i, o := range s.Outcomes {
		status := "ok"
		if o.Error != "" {
			status = cr.failed.Sprint("failed")
		}
		tbl.AppendRow(table.Row{i + 1, o.Name, o.Count, o.Duration.Round(time.Microsecond), status})
	}
	fmt.Fprintln(cr.out)
	cr.heading.Fprintln(cr.out, "Summary:")
	fmt.Fprintln(cr.out, tbl.Render())
}

// RenderTable renders documents as a table with one column per field seen
func RenderTable(docs []domain.Document) string {
	if len(docs) == 0 {
		return "(no documents)"
	}
	columns := Columns(docs)

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	header := make(table.Row, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	tbl.AppendHeader(header)

	for _, doc := range docs {
		row := make(table.Row, len(columns))
		for i, c := range columns {
			row[i] = FormatValue(doc[c])
		}
		tbl.AppendRow(row)
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d", len(docs))})
	return tbl.Render()
}

// Columns returns the union of the documents' fields, book fields first
func Columns(docs []domain.Document) []string {
	seen := make(map[string]bool)
	for _, doc := range docs {
		for k := range doc {
			seen[k] = true
		}
	}
	columns := make([]string, 0, len(seen))
	for _, c := range columnOrder {
		if seen[c] {
			columns = append(columns, c)
			delete(seen, c)
		}
	}
	rest := make([]string, 0, len(seen))
	for k := range seen {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	return append(columns, rest...)
}

// FormatValue renders a field value for a table cell. Floats keep at most
// two decimals; missing values render empty.
func FormatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case float64:
		if val == math.Trunc(val) {
			return strconv.FormatFloat(val, 'f', 0, 64)
		}
		return strconv.FormatFloat(math.Round(val*100)/100, 'f', -1, 64)
	case float32:
		return FormatValue(float64(val))
	default:
		return fmt.Sprintf("%v", val)
	}
}
