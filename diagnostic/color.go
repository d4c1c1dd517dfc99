// Copyright © 2024 The Shelly authors

package diagnostic

import (
	"fmt"
	"os"
	"strings"
)

// ColorMode controls when ANSI color codes are used.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // detect based on terminal and NO_COLOR
	ColorAlways                  // always use colors
	ColorNever                   // never use colors
)

func (m ColorMode) String() string {
	switch m {
	case ColorAlways:
		return "always"
	case ColorNever:
		return "never"
	default:
		return "auto"
	}
}

// ParseColorMode parses "auto", "always" or "never".
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("invalid color mode %q: want auto, always or never", s)
	}
}

// Enabled reports whether output written to f should be colored.
func (m ColorMode) Enabled(f *os.File) bool {
	return choosePalette(m, f) == ansiPalette
}

// palette holds the ANSI escape sequences for diagnostic output.
type palette struct {
	bold       string
	boldRed    string
	boldYellow string
	boldBlue   string
	boldCyan   string
	reset      string
}

var ansiPalette = palette{
	bold:       "\033[1m",
	boldRed:    "\033[1;31m",
	boldYellow: "\033[1;33m",
	boldBlue:   "\033[1;34m",
	boldCyan:   "\033[1;36m",
	reset:      "\033[0m",
}

var noPalette = palette{}

// choosePalette selects the color palette for the mode and output file.
func choosePalette(mode ColorMode, w *os.File) palette {
	switch mode {
	case ColorAlways:
		return ansiPalette
	case ColorNever:
		return noPalette
	default:
		if os.Getenv("NO_COLOR") != "" {
			return noPalette
		}
		if !isTerminal(w) {
			return noPalette
		}
		return ansiPalette
	}
}

// isTerminal reports whether f is connected to a terminal.
func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
