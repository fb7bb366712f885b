package pretty

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/shovelware/shovel/common"
)

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stderr.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// Percent renders a single-line progress update. Interactive terminals
// get an in-place bar, everything else gets a plain log line.
func Percent(percent int, message string) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	if !Interactive {
		common.Log("%3d%% %s", percent, message)
		return
	}
	width := terminalWidth()
	barroom := width - len(message) - 10
	if barroom < 10 {
		fmt.Fprintf(os.Stderr, "\r%s%3d%%%s %s\033[K", Bold, percent, Reset, message)
		return
	}
	filled := barroom * percent / 100
	bar := strings.Repeat("#", filled) + strings.Repeat("-", barroom-filled)
	fmt.Fprintf(os.Stderr, "\r%s%3d%%%s [%s] %s\033[K", Bold, percent, Reset, bar, message)
}

// ProgressDone ends the in-place progress line so that following output
// starts on a fresh row.
func ProgressDone() {
	if Interactive {
		fmt.Fprintln(os.Stderr)
	}
}
