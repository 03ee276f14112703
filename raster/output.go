package raster

import (
	"bufio"
	"io"

	"github.com/lixenwraith/blockview/terminal"
)

// WriteANSI writes rows as SGR-colored half blocks, one line per row.
// Style sequences are emitted only when a cell's colors differ from the previous cell.
func WriteANSI(out io.Writer, rows []Row, mode terminal.ColorMode) error {
	w := bufio.NewWriter(out)

	for _, row := range rows {
		var lastFg, lastBg terminal.RGB
		lastValid := false

		for _, cell := range row.Cells {
			if !lastValid || cell.Fg != lastFg || cell.Bg != lastBg {
				terminal.WriteStyle(w, cell.Fg, cell.Bg, mode)
				lastFg, lastBg = cell.Fg, cell.Bg
				lastValid = true
			}
			w.WriteRune(HalfBlock)
		}
		terminal.WriteReset(w)
		w.WriteByte('\n')
	}

	return w.Flush()
}
