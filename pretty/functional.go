package pretty

import (
	"fmt"

	"github.com/shovelware/shovel/common"
)

func Ok() error {
	common.Log("%sOK.%s", Green, Reset)
	return nil
}

func Success(form string, details ...interface{}) {
	common.Log("%s%s%s", Green, fmt.Sprintf(form, details...), Reset)
}

func Failure(form string, details ...interface{}) {
	common.Log("%s%s%s", Red, fmt.Sprintf(form, details...), Reset)
}

func Warning(form string, details ...interface{}) {
	common.Log("%sWarning: %s%s", Yellow, fmt.Sprintf(form, details...), Reset)
}

func Highlight(form string, details ...interface{}) {
	common.Log("%s%s%s", Cyan, fmt.Sprintf(form, details...), Reset)
}

func Note(form string, details ...interface{}) {
	common.Log("%sNote: %s%s", Faint, fmt.Sprintf(form, details...), Reset)
}

func DebugNote(form string, details ...interface{}) {
	common.Debug("%s%s%s", Faint, fmt.Sprintf(form, details...), Reset)
}

// Exit panics with an ExitCode, which the main-level exit protection
// converts into a message and an actual os.Exit.
func Exit(code int, form string, details ...interface{}) error {
	message := fmt.Sprintf(form, details...)
	panic(common.ExitCode{Code: code, Message: message})
}

// Guard is an exit-on-violation assertion for command-level preconditions.
func Guard(condition bool, code int, form string, details ...interface{}) {
	if !condition {
		Exit(code, form, details...)
	}
}
