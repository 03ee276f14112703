// Package terminal holds the color model shared by the raster pipeline and its
// consumers, plus direct ANSI output for non-interactive rendering.
//
// Features:
//   - True color (24-bit) and 256-color palette support
//   - Color capability detection from the environment
//   - Half-block row output as SGR escape sequences
//
// The interactive viewer draws through tcell; this package covers the pieces that
// must work without a screen, such as piping a rendered image to a file.
package terminal
