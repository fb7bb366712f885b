package pretty

import (
	"os"

	"github.com/mattn/go-isatty"

	"github.com/shovelware/shovel/common"
)

var (
	Colorless   bool
	Iconic      bool
	Disabled    bool
	Interactive bool
	White       string
	Grey        string
	Red         string
	Green       string
	Blue        string
	Yellow      string
	Cyan        string
	Reset       string
	Sparkles    string
	Rocket      string
	Bold        string
	Faint       string
	Underline   string
)

func Setup() {
	stdin := isatty.IsTerminal(os.Stdin.Fd())
	stdout := isatty.IsTerminal(os.Stdout.Fd())
	stderr := isatty.IsTerminal(os.Stderr.Fd())

	if os.Getenv("NO_COLOR") != "" {
		Colorless = true
	}
	if os.Getenv("TERM") == "" {
		Colorless = true
	}

	Interactive = stdin && stdout && stderr

	visualOutput := stderr && !Colorless

	localSetup(Interactive)

	common.Trace("Interactive mode enabled: %v; colors enabled: %v; icons enabled: %v", Interactive, !Disabled, Iconic)
	if visualOutput && !Disabled {
		White = csi("97m")
		Grey = csi("90m")
		Red = csi("91m")
		Green = csi("92m")
		Yellow = csi("93m")
		Blue = csi("94m")
		Cyan = csi("96m")
		Reset = csi("0m")
		Bold = csi("1m")
		Faint = csi("2m")
		Underline = csi("4m")
	}
	if Iconic && !Colorless {
		Sparkles = "✨ "
		Rocket = "\U0001F680 "
	}
}

func csi(value string) string {
	return "\033[" + value
}
