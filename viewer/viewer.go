// Package viewer is the interactive tcell front end for the render pipeline.
package viewer

import (
	"fmt"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"

	"github.com/lixenwraith/blockview/pipeline"
	"github.com/lixenwraith/blockview/raster"
	"github.com/lixenwraith/blockview/terminal"
)

// Options configures a Viewer
type Options struct {
	Sources    []string
	HeaderRows int
	ColorMode  terminal.ColorMode
	Logger     *zap.Logger
}

// Viewer draws the current pipeline state and turns key presses into requests
type Viewer struct {
	screen     tcell.Screen
	ctrl       *pipeline.Controller
	sources    []string
	index      int
	headerRows int
	colorMode  terminal.ColorMode
	logger     *zap.Logger

	headerStyle tcell.Style
	errorStyle  tcell.Style
	dimStyle    tcell.Style
}

// New creates a viewer on an initialized screen
func New(screen tcell.Screen, ctrl *pipeline.Controller, opts Options) *Viewer {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Viewer{
		screen:      screen,
		ctrl:        ctrl,
		sources:     opts.Sources,
		headerRows:  max(opts.HeaderRows, 0),
		colorMode:   opts.ColorMode,
		logger:      logger,
		headerStyle: tcell.StyleDefault.Bold(true),
		errorStyle:  tcell.StyleDefault.Foreground(tcell.ColorRed),
		dimStyle:    tcell.StyleDefault.Foreground(tcell.ColorGray),
	}
}

// Current returns the selected source, or "" when there are none
func (v *Viewer) Current() string {
	if len(v.sources) == 0 {
		return ""
	}
	return v.sources[v.index]
}

// Bounds is the cell area below the header, sampled from the screen now
func (v *Viewer) Bounds() raster.Bounds {
	w, h := v.screen.Size()
	return raster.Bounds{MaxWidthCells: w, MaxHeightCells: h - v.headerRows}.Clamp()
}

// Run drives the event loop until the user quits or the screen is finalized
func (v *Viewer) Run() error {
	unsubscribe := v.ctrl.Subscribe(func(pipeline.State) {
		// Wake the loop; a full queue is fine since the next event redraws the latest state
		_ = v.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer unsubscribe()

	v.request()
	v.Draw(v.ctrl.State())

	for {
		ev := v.screen.PollEvent()
		if ev == nil {
			return nil
		}

		switch ev := ev.(type) {
		case *tcell.EventResize:
			v.screen.Sync()
			v.request()
		case *tcell.EventKey:
			switch v.handleKey(ev) {
			case actionQuit:
				return nil
			case actionRequest:
				v.request()
			}
		case *tcell.EventError:
			return fmt.Errorf("screen: %w", ev)
		}

		v.Draw(v.ctrl.State())
	}
}

func (v *Viewer) request() {
	src := v.Current()
	if src == "" {
		return
	}
	b := v.Bounds()
	v.logger.Debug("Requesting render", zap.String("source", src), zap.Int("index", v.index))
	v.ctrl.Request(src, b)
}

type textLine struct {
	text  string
	style tcell.Style
}

type keyAction int

const (
	actionNone keyAction = iota
	actionQuit
	actionRequest
	actionRedraw
)

func (v *Viewer) handleKey(ev *tcell.EventKey) keyAction {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC, tcell.KeyCtrlD:
		return actionQuit
	case tcell.KeyRight, tcell.KeyTab, tcell.KeyDown:
		return v.step(1)
	case tcell.KeyLeft, tcell.KeyBacktab, tcell.KeyUp:
		return v.step(-1)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return actionQuit
		case 'n', 'j', 'l':
			return v.step(1)
		case 'p', 'k', 'h':
			return v.step(-1)
		case 'r', 'R':
			return actionRequest
		case 'c', 'C':
			v.ToggleColorMode()
			return actionRedraw
		}
	}
	return actionNone
}

// step moves the selection by delta with wraparound
func (v *Viewer) step(delta int) keyAction {
	n := len(v.sources)
	if n <= 1 {
		return actionNone
	}
	v.index = ((v.index+delta)%n + n) % n
	return actionRequest
}

// ToggleColorMode flips between truecolor and the 256 palette
func (v *Viewer) ToggleColorMode() {
	if v.colorMode == terminal.ColorModeTrueColor {
		v.colorMode = terminal.ColorMode256
	} else {
		v.colorMode = terminal.ColorModeTrueColor
	}
}

// Draw renders the header and, when ready, the cell grid
func (v *Viewer) Draw(s pipeline.State) {
	v.screen.Clear()
	w, h := v.screen.Size()

	header := []textLine{
		{v.selectedLine(), v.headerStyle},
		{v.Current(), v.dimStyle},
		v.statusLine(s),
	}
	for i, line := range header {
		if i >= v.headerRows || i >= h {
			break
		}
		v.drawText(0, i, w, line.text, line.style)
	}

	if s.Kind == pipeline.KindReady {
		for _, row := range s.Rows {
			y := v.headerRows + row.Y
			if y >= h {
				break
			}
			for _, cell := range row.Cells {
				if cell.X >= w {
					break
				}
				style := tcell.StyleDefault.Foreground(v.color(cell.Fg)).Background(v.color(cell.Bg))
				v.screen.SetContent(cell.X, y, raster.HalfBlock, nil, style)
			}
		}
	}

	v.screen.Show()
}

func (v *Viewer) selectedLine() string {
	if len(v.sources) == 0 {
		return "No image selected"
	}
	line := "Selected: " + filepath.Base(v.Current())
	if len(v.sources) > 1 {
		line += fmt.Sprintf("  [%d/%d]", v.index+1, len(v.sources))
	}
	return line
}

func (v *Viewer) statusLine(s pipeline.State) textLine {
	switch s.Kind {
	case pipeline.KindLoading:
		return textLine{"Loading image...", v.dimStyle}
	case pipeline.KindFailed:
		return textLine{"Error: " + s.Message, v.errorStyle}
	case pipeline.KindReady:
		return textLine{s.Info, tcell.StyleDefault}
	}
	return textLine{"", tcell.StyleDefault}
}

// drawText writes text on row y, truncated to width cells
func (v *Viewer) drawText(x, y, width int, text string, style tcell.Style) {
	text = runewidth.Truncate(text, width-x, "…")
	for _, r := range text {
		v.screen.SetContent(x, y, r, nil, style)
		x += max(runewidth.RuneWidth(r), 1)
	}
}

func (v *Viewer) color(c terminal.RGB) tcell.Color {
	if v.colorMode == terminal.ColorMode256 {
		return tcell.PaletteColor(int(terminal.RGBTo256(c)))
	}
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
