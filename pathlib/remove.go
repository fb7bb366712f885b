package pathlib

import (
	"os"
	"time"

	"github.com/shovelware/shovel/common"
)

// RemoveFile deletes one file with retries, clearing the read-only
// attribute when set. Already-missing files count as removed, so
// concurrent deletion stays idempotent. Reports success instead of
// raising on exhaustion.
func RemoveFile(target string) bool {
	full := Longpath(target)
	for attempt := 0; attempt < 5; attempt += 1 {
		if attempt > 0 {
			time.Sleep(200 * time.Millisecond)
		}
		err := os.Remove(full)
		if err == nil {
			return true
		}
		if os.IsNotExist(err) {
			return true
		}
		clearReadonly(full)
		common.Trace("Remove %q attempt %d failed, reason: %v", target, attempt+1, err)
	}
	common.Debug("Giving up on removing %q after retries.", target)
	return false
}
