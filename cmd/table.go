package cmd

import (
	"github.com/pterm/pterm"
)

// PrintTableNoPad renders rows without the default left padding.
func PrintTableNoPad(rows pterm.TableData, hasHeader bool) {
	table := pterm.DefaultTable.WithData(rows).WithLeftAlignment()
	if hasHeader {
		table = table.WithHasHeader()
	}
	_ = table.Render()
}
