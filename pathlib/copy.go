package pathlib

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shovelware/shovel/common"
)

func copyOnce(source, target string) (err error) {
	stat, err := os.Stat(Longpath(source))
	if err != nil {
		return err
	}
	reader, err := os.Open(Longpath(source))
	if err != nil {
		return err
	}
	defer reader.Close()
	partial := target + ".part"
	writer, err := Create(partial)
	if err != nil {
		return err
	}
	_, err = io.Copy(writer, reader)
	closure := writer.Close()
	if err == nil {
		err = closure
	}
	if err != nil {
		os.Remove(Longpath(partial))
		return err
	}
	err = os.Rename(Longpath(partial), Longpath(target))
	if err != nil {
		os.Remove(Longpath(partial))
		return err
	}
	os.Chmod(Longpath(target), stat.Mode().Perm())
	os.Chtimes(Longpath(target), stat.ModTime(), stat.ModTime())
	return nil
}

// CopyFile is a metadata-preserving copy with retries over transient
// IO failures. The final error propagates on exhaustion.
func CopyFile(source, target string) (err error) {
	for attempt := 0; attempt < 3; attempt += 1 {
		if attempt > 0 {
			time.Sleep(1 * time.Second)
			common.Debug("Copy retry %d for %q.", attempt, source)
		}
		err = copyOnce(source, target)
		if err == nil {
			return nil
		}
	}
	return fmt.Errorf("Copy failure from %q to %q, reason: %s", source, target, err)
}
