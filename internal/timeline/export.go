package timeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	yaml "github.com/goccy/go-yaml"

	"ratesched/internal/sched"
)

// Formats accepted by Write.
const (
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatCSV   = "csv"
	FormatTable = "table"
)

// Write encodes records in the given format.
func Write(w io.Writer, format string, records []sched.ExecutionRecord) error {
	if records == nil {
		records = []sched.ExecutionRecord{}
	}

	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case FormatYAML:
		out, err := yaml.Marshal(records)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		_, err = w.Write(out)
		return err
	case FormatCSV:
		cw := csv.NewWriter(w)
		cw.Write([]string{"id", "start", "end"})
		for _, r := range records {
			cw.Write([]string{r.ID, strconv.FormatInt(r.Start, 10), strconv.FormatInt(r.End, 10)})
		}
		cw.Flush()
		return cw.Error()
	case FormatTable:
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("ID", "START", "END", "DURATION")
		for _, r := range records {
			t.Row(r.ID, strconv.FormatInt(r.Start, 10), strconv.FormatInt(r.End, 10), strconv.FormatInt(r.Duration(), 10))
		}
		_, err := fmt.Fprintln(w, t.String())
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
