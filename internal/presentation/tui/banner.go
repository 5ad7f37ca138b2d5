package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the console banner with the version.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	// Warm gradient, one color per line
	lines := []struct{ text, color string }{
		{`      _                 _           _   `, "#fbbf24"},
		{`  ___| |__   ___  _ __ | |__   ___ | |_ `, "#f59e0b"},
		{` / __| '_ \ / _ \| '_ \| '_ \ / _ \| __|`, "#f97316"},
		{` \__ \ | | | (_) | |_) | |_) | (_) | |_ `, "#ef4444"},
		{` |___/_| |_|\___/| .__/|_.__/ \___/ \__|`, "#e11d48"},
		{`                 |_|                    `, "#be123c"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  version "+version).Faint())
	fmt.Fprintln(w)
}
