package raster

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lixenwraith/blockview/terminal"
)

func TestWriteANSI(t *testing.T) {
	rows := Rasterize(gradient(6, 5))

	var buf bytes.Buffer
	if err := WriteANSI(&buf, rows, terminal.ColorModeTrueColor); err != nil {
		t.Fatalf("WriteANSI: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != len(rows) {
		t.Fatalf("got %d lines, want %d", len(lines), len(rows))
	}
	for i, line := range lines {
		if n := strings.Count(line, string(HalfBlock)); n != 6 {
			t.Errorf("line %d has %d half blocks, want 6", i, n)
		}
		if !strings.HasSuffix(line, "\x1b[0m") {
			t.Errorf("line %d does not end with reset", i)
		}
	}
}

func TestWriteANSI_CoalescesStyles(t *testing.T) {
	c := terminal.RGB{R: 9, G: 9, B: 9}
	rows := []Row{{Y: 0, Cells: []Cell{{X: 0, Fg: c, Bg: c}, {X: 1, Fg: c, Bg: c}, {X: 2, Fg: c, Bg: c}}}}

	var buf bytes.Buffer
	if err := WriteANSI(&buf, rows, terminal.ColorMode256); err != nil {
		t.Fatalf("WriteANSI: %v", err)
	}

	if n := strings.Count(buf.String(), "\x1b[38;5;"); n != 1 {
		t.Errorf("got %d foreground sequences, want 1", n)
	}
	if !strings.Contains(buf.String(), "▀▀▀") {
		t.Errorf("output %q missing three consecutive half blocks", buf.String())
	}
}
