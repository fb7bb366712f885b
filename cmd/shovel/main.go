package main

import (
	"os"

	"github.com/shovelware/shovel/cmd"
	"github.com/shovelware/shovel/common"
)

func ExitProtection() {
	status := recover()
	if status != nil {
		exit, ok := status.(common.ExitCode)
		if ok {
			exit.ShowMessage()
			common.TimelineReport()
			common.WaitLogs()
			os.Exit(exit.Code)
		}
		common.WaitLogs()
		panic(status)
	}
	common.TimelineReport()
	common.WaitLogs()
}

func main() {
	defer ExitProtection()
	cmd.Execute()
}
