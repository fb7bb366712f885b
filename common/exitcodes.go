package common

import "os"

type ExitCode struct {
	Code    int
	Message string
}

func (it ExitCode) ShowMessage() {
	if len(it.Message) == 0 {
		return
	}
	if it.Code != 0 && Silent() {
		printout(os.Stderr, it.Message)
		return
	}
	Log("%s", it.Message)
}

func (it ExitCode) Done() {
	it.ShowMessage()
	WaitLogs()
	os.Exit(it.Code)
}
