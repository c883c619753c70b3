package main

import (
	"fmt"
	"os"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return color + text + colorReset
}

// emit writes a prefixed, colorized status line to stderr, keeping stdout
// clean for data output (listings, CSV, URLs).
func emit(color, prefix, format string, args ...any) {
	fmt.Fprintln(os.Stderr, colorize(color, prefix+fmt.Sprintf(format, args...)))
}

func printSuccess(format string, args ...any) { emit(colorGreen, "✓ ", format, args...) }
func printError(format string, args ...any)   { emit(colorRed, "✗ ", format, args...) }
func printWarning(format string, args ...any) { emit(colorYellow, "⚠ ", format, args...) }
func printStep(format string, args ...any)    { emit(colorCyan, "→ ", format, args...) }

// printStatus renders an indented label/value pair, the building block of the
// status dashboard.
func printStatus(label string, format string, args ...any) {
	val := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "  %s %s\n", colorize(colorBold, label+":"), val)
}

// orDash is the single place absent optional fields turn into a placeholder.
// Every listing goes through it instead of improvising its own default.
func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
