package shell

import (
	"os"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/shovelware/shovel/common"
)

// KillOrphans hunts down direct children of this process whose
// executable matches one of the given names and kills them. Used after
// Cancel as a belt-and-suspenders sweep, since a child spawned between
// flag check and registration could otherwise leak.
func KillOrphans(names ...string) {
	processes, err := ps.Processes()
	if err != nil {
		common.Trace("Process listing failed, reason: %v", err)
		return
	}
	self := os.Getpid()
	for _, candidate := range processes {
		if candidate.PPid() != self {
			continue
		}
		executable := strings.ToLower(candidate.Executable())
		for _, name := range names {
			if executable == strings.ToLower(name) || strings.TrimSuffix(executable, ".exe") == strings.ToLower(name) {
				victim, err := os.FindProcess(candidate.Pid())
				if err == nil {
					common.Debug("Sweeping orphan child %d [%s].", candidate.Pid(), executable)
					victim.Kill()
				}
			}
		}
	}
}
