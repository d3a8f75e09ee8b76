package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/aristath/imgbatch/internal/imageops"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// runInfo prints header information for each image.
func (a *app) runInfo(args []string) int {
	fs := pflag.NewFlagSet("info", pflag.ContinueOnError)
	fs.SetOutput(a.stderr)
	short := fs.BoolP("short", "s", false, "Only show size, dimensions and format")
	fs.Usage = func() {
		fmt.Fprintln(a.stderr, "Usage: imgbatch info [flags] <image>...\n\nFlags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}

	headers := []string{"File", "Size", "Dimensions", "Format"}
	if !*short {
		headers = append(headers, "Color", "Depth", "Alpha")
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	code := exitOK
	for _, path := range fs.Args() {
		info, err := imageops.Describe(path)
		if err != nil {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
			code = exitError
			continue
		}
		t.Row(infoRow(info, *short)...)
	}

	fmt.Fprintln(a.stdout, t.Render())
	return code
}

func infoRow(info imageops.Info, short bool) []string {
	row := []string{
		info.Path,
		humanize.IBytes(uint64(info.Size)),
		fmt.Sprintf("%dx%d", info.Width, info.Height),
		info.Format,
	}
	if !short {
		row = append(row, info.ColorModel, strconv.Itoa(info.BitDepth), strconv.FormatBool(info.HasAlpha))
	}
	return row
}
