package visualization

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/inferloop/synthetizer/internal/sampling"
	"github.com/inferloop/synthetizer/pkg/constants"
)

// TableRenderer prints one table per description and component
type TableRenderer struct {
	style table.Style
}

// NewTableRenderer creates a table renderer with light box drawing
func NewTableRenderer() *TableRenderer {
	return &TableRenderer{style: table.StyleLight}
}

// ContentType returns the MIME type of the rendered output
func (tr *TableRenderer) ContentType() string {
	return constants.ContentTypePlainText
}

// Render writes the description tree to w
func (tr *TableRenderer) Render(w io.Writer, d *sampling.Description) error {
	var err error
	first := true
	walk(d, func(node *sampling.Description) {
		if err != nil {
			return
		}
		if !first {
			if _, err = fmt.Fprintln(w); err != nil {
				return
			}
		}
		first = false
		_, err = fmt.Fprintln(w, tr.renderOne(node))
	})
	return err
}

func (tr *TableRenderer) renderOne(d *sampling.Description) string {
	t := table.NewWriter()
	t.SetStyle(tr.style)
	t.SetTitle(d.Title)
	// widen the first column so the title never wraps
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: text.RuneWidthWithoutEscSequences(d.Title)},
	})
	t.AppendHeader(table.Row{"Statistic", "Value"})

	t.AppendRow(table.Row{"kind", d.Kind})
	t.AppendRow(table.Row{"count", d.Count})

	switch d.Kind {
	case sampling.KindCategorical, sampling.KindUniqueCategorical:
		t.AppendRow(table.Row{"distinct", d.Distinct})
		if len(d.TopValues) > 0 {
			t.AppendSeparator()
			for _, vc := range d.TopValues {
				t.AppendRow(table.Row{vc.Value, vc.Count})
			}
		}

	case sampling.KindContinuous:
		t.AppendRow(table.Row{"trimmed", d.Trimmed})
		t.AppendRow(table.Row{"min", d.Min})
		t.AppendRow(table.Row{"max", d.Max})
		if d.Constant != nil {
			t.AppendRow(table.Row{"constant", *d.Constant})
		} else {
			t.AppendRow(table.Row{"mean", fmt.Sprintf("%.3f", d.Mean)})
			t.AppendRow(table.Row{"std dev", fmt.Sprintf("%.3f", d.StdDev)})
		}
		t.AppendRow(table.Row{"histogram bins", len(d.Histogram)})
	}

	if len(d.Metadata) > 0 {
		keys := make([]string, 0, len(d.Metadata))
		for k := range d.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		t.AppendSeparator()
		for _, k := range keys {
			t.AppendRow(table.Row{k, d.Metadata[k]})
		}
	}

	return t.Render()
}
