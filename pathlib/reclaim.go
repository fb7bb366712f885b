package pathlib

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/shovelware/shovel/common"
)

func insideOf(root, candidate string) bool {
	relative, err := filepath.Rel(root, candidate)
	if err != nil {
		return false
	}
	return relative != "." && relative != ".." && !strings.HasPrefix(relative, ".."+string(filepath.Separator))
}

// ReclaimEmptyDirs walks upward from the parent of every seed path,
// removing directories as long as they are empty, and stops at the
// first non-empty ancestor. The stop directory itself is never removed.
func ReclaimEmptyDirs(seeds []string, stop string) {
	stop, err := Abs(stop)
	if err != nil {
		return
	}
	visited := make(map[string]bool)
	for _, seed := range seeds {
		full, err := Abs(seed)
		if err != nil {
			continue
		}
		for current := filepath.Dir(full); insideOf(stop, current); current = filepath.Dir(current) {
			if visited[current] {
				break
			}
			if !IsEmptyDir(current) {
				break
			}
			err = os.Remove(Longpath(current))
			if err != nil {
				common.Trace("Empty directory removal on %q failed, reason: %v", current, err)
				break
			}
			visited[current] = true
			common.Trace("Reclaimed empty directory %q.", current)
		}
	}
}
