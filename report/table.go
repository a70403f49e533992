package report

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

func newTable(headers []string, w io.Writer) *tablewriter.Table {
	cfg := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			Formatting: tw.CellFormatting{AutoFormat: tw.Off},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
		MaxWidth: 100,
		Behavior: tw.Behavior{TrimSpace: tw.On},
	}
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(cfg),
		tablewriter.WithHeader(headers),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{Left: tw.On, Top: tw.Off, Right: tw.On, Bottom: tw.Off},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}

// Table writes a document / criterion / level summary to w.
func (b *Builder) Table(w io.Writer) error {
	table := newTable([]string{"Document", "Criterio", "Nivel"}, w)
	for pair := b.results.Oldest(); pair != nil; pair = pair.Next() {
		if len(pair.Value) == 0 {
			if err := table.Append([]string{pair.Key, "-", "-"}); err != nil {
				return err
			}
			continue
		}
		for _, c := range pair.Value {
			if err := table.Append([]string{pair.Key, c.Criterion, strconv.Itoa(c.Level)}); err != nil {
				return err
			}
		}
	}
	return table.Render()
}
