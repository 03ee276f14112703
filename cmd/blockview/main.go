package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/lixenwraith/blockview/config"
	"github.com/lixenwraith/blockview/decode"
	"github.com/lixenwraith/blockview/logging"
	"github.com/lixenwraith/blockview/notify"
	"github.com/lixenwraith/blockview/pipeline"
	"github.com/lixenwraith/blockview/raster"
	"github.com/lixenwraith/blockview/terminal"
	"github.com/lixenwraith/blockview/viewer"
)

type options struct {
	configPath string
	color      string
	background string
	filter     string
	debug      bool
	sound      bool
	print      bool
	cols       int
	rows       int
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Config file (default: user config dir, if present)")
	flag.StringVar(&opts.color, "color", "", "Color mode: auto, truecolor, 256")
	flag.StringVar(&opts.background, "bg", "", "Background for transparent pixels, as #rrggbb")
	flag.StringVar(&opts.filter, "filter", "", "Resample filter: nearest, bilinear, catmullrom")
	flag.BoolVar(&opts.debug, "debug", false, "Write debug logs to the log directory")
	flag.BoolVar(&opts.sound, "sound", false, "Play a tone when an image finishes loading")
	flag.BoolVar(&opts.print, "print", false, "Print each image to stdout as ANSI and exit")
	flag.IntVar(&opts.cols, "cols", 0, "Output width in cells for -print (default: terminal width)")
	flag.IntVar(&opts.rows, "rows", 0, "Output height in cells for -print (default: full terminal height)")
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	if err := run(opts, setFlags(), flag.Args(), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run owns every resource so deferred cleanup completes before main exits
func run(opts options, set map[string]bool, sources []string, stdout *os.File) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := applyFlags(cfg, opts, set); err != nil {
		return err
	}

	logger, closeLog, err := logging.Setup(cfg.Debug, cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	defer closeLog()

	for _, src := range sources {
		if !decode.IsImageFile(src) {
			fmt.Fprintf(os.Stderr, "Warning: %s does not have a known image extension\n", src)
		}
	}

	bg, _ := cfg.BackgroundRGB()
	ctrl := pipeline.New(
		decode.FileLoader{MaxBytes: cfg.MaxBytes},
		decode.Std{MaxPixels: cfg.MaxPixels},
		pipeline.WithLogger(logger),
		pipeline.WithBackground(bg),
		pipeline.WithFilter(cfg.FilterValue()),
	)
	defer ctrl.Close()

	// Open the audio device now rather than inside the first listener call
	chime := notify.New(cfg.Sound, logger)
	if err := chime.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Audio initialization failed: %v (continuing without audio)\n", err)
	}
	unsubscribe := ctrl.Subscribe(chime.Observe)
	defer unsubscribe()

	logger.Info("Starting",
		zap.Int("sources", len(sources)),
		zap.Bool("print", opts.print),
		zap.Stringer("color_mode", cfg.Mode()),
		zap.String("filter", string(cfg.FilterValue())),
	)

	if opts.print {
		termW, termH := terminal.Size(stdout)
		b := printBounds(opts.cols, opts.rows, termW, termH)
		if err := printImages(context.Background(), ctrl, sources, b, cfg.Mode(), stdout); err != nil {
			logger.Warn("Print failed", zap.Error(err))
			return err
		}
		return nil
	}

	if err := runViewer(ctrl, sources, cfg, logger); err != nil {
		logger.Error("Viewer failed", zap.Error(err))
		return err
	}
	return nil
}

// printBounds sizes -print output: explicit cols/rows win, otherwise the whole
// terminal. No header is drawn in this mode.
func printBounds(cols, rows, termW, termH int) raster.Bounds {
	if cols > 0 {
		termW = cols
	}
	if rows > 0 {
		termH = rows
	}
	return raster.Bounds{MaxWidthCells: termW, MaxHeightCells: termH}.Clamp()
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: blockview [options] <image> [image...]")
	fmt.Fprintln(os.Stderr, "\nSupported formats: PNG, JPEG, GIF, BMP, TIFF, WebP")
	fmt.Fprintln(os.Stderr, "\nOptions:")
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr, "\nControls:")
	fmt.Fprintln(os.Stderr, "  q, Esc, Ctrl+C       Quit")
	fmt.Fprintln(os.Stderr, "  n, Right, Tab        Next image")
	fmt.Fprintln(os.Stderr, "  p, Left, Shift+Tab   Previous image")
	fmt.Fprintln(os.Stderr, "  r                    Reload current image")
	fmt.Fprintln(os.Stderr, "  c                    Toggle color mode (24bit/256)")
}

// setFlags returns the names of flags given on the command line
func setFlags() map[string]bool {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// applyFlags layers explicitly set flags over the loaded config
func applyFlags(cfg *config.Config, opts options, set map[string]bool) error {
	if set["color"] {
		cfg.ColorMode = opts.color
	}
	if set["bg"] {
		cfg.Background = opts.background
	}
	if set["filter"] {
		cfg.Filter = opts.filter
	}
	if set["debug"] {
		cfg.Debug = opts.debug
	}
	if set["sound"] {
		cfg.Sound = opts.sound
	}
	return cfg.Validate()
}

// printImages renders each source in order and writes it to out.
// A failed image is reported inline and does not stop the rest.
func printImages(ctx context.Context, ctrl *pipeline.Controller, sources []string, b raster.Bounds, mode terminal.ColorMode, out io.Writer) error {
	failed := 0
	for _, src := range sources {
		ctrl.Request(src, b)
		s, err := ctrl.Wait(ctx)
		if err != nil {
			return err
		}

		if len(sources) > 1 {
			fmt.Fprintf(out, "%s\n", src)
		}
		if s.Kind == pipeline.KindFailed {
			fmt.Fprintf(out, "Error: %s\n", s.Message)
			failed++
			continue
		}
		if err := raster.WriteANSI(out, s.Rows, mode); err != nil {
			return fmt.Errorf("write %s: %w", src, err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(sources))
	}
	return nil
}

func runViewer(ctrl *pipeline.Controller, sources []string, cfg *config.Config, logger *zap.Logger) (err error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal init: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal init: %w", err)
	}

	// Restore the terminal before reporting a crash
	defer func() {
		if r := recover(); r != nil {
			screen.Fini()
			stack := debug.Stack()
			logger.Error("Viewer crashed", zap.Any("panic", r), zap.ByteString("stack", stack))
			fmt.Fprintf(os.Stderr, "\n\x1b[31mBLOCKVIEW CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", stack)
			err = fmt.Errorf("viewer crashed: %v", r)
		}
	}()
	defer screen.Fini()

	v := viewer.New(screen, ctrl, viewer.Options{
		Sources:    sources,
		HeaderRows: cfg.HeaderRows,
		ColorMode:  cfg.Mode(),
		Logger:     logger,
	})
	return v.Run()
}
