package terminal

import (
	"bufio"
)

// Pre-allocated ANSI sequence fragments
var (
	csiReset = []byte("\x1b[0m")

	csiFg256 = []byte("\x1b[38;5;") // followed by N;m
	csiBg256 = []byte("\x1b[48;5;") // followed by N;m
	csiFgRGB = []byte("\x1b[38;2;") // followed by R;G;B;m
	csiBgRGB = []byte("\x1b[48;2;") // followed by R;G;B;m
)

// writeInt writes an integer without allocation
// Optimized for terminal values (0-255 common, 0-999 typical max)
func writeInt(w *bufio.Writer, n int) {
	if n < 0 {
		n = 0
	}
	if n < 10 {
		w.WriteByte(byte(n) + '0')
		return
	}
	if n < 100 {
		w.WriteByte(byte(n/10) + '0')
		w.WriteByte(byte(n%10) + '0')
		return
	}
	if n < 1000 {
		w.WriteByte(byte(n/100) + '0')
		w.WriteByte(byte(n/10%10) + '0')
		w.WriteByte(byte(n%10) + '0')
		return
	}
	var buf [20]byte
	i := len(buf) - 1
	for n > 0 {
		buf[i] = byte(n%10) + '0'
		n /= 10
		i--
	}
	w.Write(buf[i+1:])
}

func writeRGB(w *bufio.Writer, prefix []byte, c RGB) {
	w.Write(prefix)
	writeInt(w, int(c.R))
	w.WriteByte(';')
	writeInt(w, int(c.G))
	w.WriteByte(';')
	writeInt(w, int(c.B))
	w.WriteByte('m')
}

func write256(w *bufio.Writer, prefix []byte, idx uint8) {
	w.Write(prefix)
	writeInt(w, int(idx))
	w.WriteByte('m')
}

// WriteStyle emits foreground and background SGR sequences for the given mode
func WriteStyle(w *bufio.Writer, fg, bg RGB, mode ColorMode) {
	if mode == ColorMode256 {
		write256(w, csiFg256, RGBTo256(fg))
		write256(w, csiBg256, RGBTo256(bg))
		return
	}
	writeRGB(w, csiFgRGB, fg)
	writeRGB(w, csiBgRGB, bg)
}

// WriteReset emits SGR 0
func WriteReset(w *bufio.Writer) {
	w.Write(csiReset)
}
