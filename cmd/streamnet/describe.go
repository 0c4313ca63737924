package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/born-ml/streamnet/internal/graph"
	"github.com/born-ml/streamnet/internal/nn"
)

func newDescribeCmd(f *flags) *cobra.Command {
	var asFormat string
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Show the nodes and parameters of a graph",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			m, err := loadModel(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asFormat != "" {
				if asFormat != "json" && asFormat != "yaml" && asFormat != "yml" {
					return errors.Errorf("--as %q: want json or yaml", asFormat)
				}
				desc, err := graph.Describe(m)
				if err != nil {
					return err
				}
				format := graph.FormatOf("graph." + asFormat)
				data, err := desc.Marshal(format)
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			}
			return describe(out, m)
		},
	}
	cmd.Flags().StringVar(&asFormat, "as", "", "print the graph description as json or yaml instead of a table")
	return cmd
}

// nodeRow is one node of the rendered graph.
type nodeRow struct {
	depth  int
	name   string
	kind   nn.Kind
	params int
	shapes []string
}

// walk lists m and its descendants in traversal order.
func walk(name string, m nn.Module[backend], depth int, rows []nodeRow) []nodeRow {
	row := nodeRow{depth: depth, name: name, kind: m.Kind()}
	c, isContainer := m.(nn.Container[backend])
	if !isContainer {
		for _, p := range m.Parameters() {
			row.params += p.Tensor().NumElements()
			row.shapes = append(row.shapes, fmt.Sprintf("%s%v", p.Name(), []int(p.Shape())))
		}
	}
	rows = append(rows, row)
	if isContainer {
		for _, child := range c.Children() {
			rows = walk(child.Name, child.Module, depth+1, rows)
		}
	}
	return rows
}

func describe(w io.Writer, m nn.Module[backend]) error {
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	headerStyle := lipgloss.NewStyle().Padding(0, 1).Bold(true).Reverse(true)
	numberStyle := cellStyle.Align(lipgloss.Right)
	table := lgtable.New().
		Border(lipgloss.RoundedBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == lgtable.HeaderRow:
				return headerStyle
			case col == 2:
				return numberStyle
			}
			return cellStyle
		}).
		Headers("Node", "Kind", "Params", "Shapes")

	for _, r := range walk("model", m, 0, nil) {
		params := ""
		if r.params > 0 {
			params = humanize.Comma(int64(r.params))
		}
		table.Row(strings.Repeat("  ", r.depth)+r.name, r.kind.String(), params, strings.Join(r.shapes, " "))
	}

	total := nn.NumParameters(m)
	_, err := fmt.Fprintf(w, "%s\n%s parameters in %d tensors, %s as float32\n",
		table.Render(), humanize.Comma(int64(total)), len(m.Parameters()),
		humanize.Bytes(uint64(total)*4)) //nolint:gosec // parameter counts are non-negative.
	return err
}
