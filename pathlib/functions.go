package pathlib

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/shovelware/shovel/common"
)

func Exists(pathname string) bool {
	_, err := os.Stat(pathname)
	return !os.IsNotExist(err)
}

func IsDir(pathname string) bool {
	stat, err := os.Stat(pathname)
	return err == nil && stat.IsDir()
}

func IsFile(pathname string) bool {
	stat, err := os.Stat(pathname)
	return err == nil && !stat.IsDir()
}

func IsEmptyDir(pathname string) bool {
	if !IsDir(pathname) {
		return false
	}
	content, err := os.ReadDir(pathname)
	if err != nil {
		return false
	}
	return len(content) == 0
}

func IsSymlink(pathname string) bool {
	stat, err := os.Lstat(pathname)
	return err == nil && stat.Mode()&os.ModeSymlink != 0
}

func Size(pathname string) (int64, bool) {
	stat, err := os.Stat(pathname)
	if err != nil {
		return 0, false
	}
	return stat.Size(), true
}

func Modtime(pathname string) (time.Time, error) {
	stat, err := os.Stat(pathname)
	if err != nil {
		return time.Now(), err
	}
	return stat.ModTime(), nil
}

func Abs(path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	fullpath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(fullpath), nil
}

func Create(filename string) (*os.File, error) {
	_, err := EnsureParentDirectory(filename)
	if err != nil {
		return nil, fmt.Errorf("Failed to ensure that parent directories for %q exist, reason: %v", filename, err)
	}
	return os.Create(Longpath(filename))
}

func WriteFile(filename string, data []byte, mode os.FileMode) error {
	_, err := EnsureParentDirectory(filename)
	if err != nil {
		return fmt.Errorf("Failed to ensure that parent directories for %q exist, reason: %v", filename, err)
	}
	return os.WriteFile(Longpath(filename), data, mode)
}

func doEnsureDirectory(directory string, mode os.FileMode) (string, error) {
	fullpath, err := filepath.Abs(directory)
	if err != nil {
		return "", err
	}
	if IsDir(fullpath) {
		return fullpath, nil
	}
	err = os.MkdirAll(Longpath(fullpath), mode)
	if err != nil {
		return "", err
	}
	stats, err := os.Stat(fullpath)
	if err != nil {
		return "", err
	}
	if !stats.IsDir() {
		return "", fmt.Errorf("Path %s is not a directory!", fullpath)
	}
	return fullpath, nil
}

func EnsureDirectory(directory string) (string, error) {
	return doEnsureDirectory(directory, 0o750)
}

func EnsureParentDirectory(resource string) (string, error) {
	return doEnsureDirectory(filepath.Dir(resource), 0o750)
}

func TryRemove(context, target string) (err error) {
	for delay := 0; delay < 5; delay += 1 {
		time.Sleep(time.Duration(delay*100) * time.Millisecond)
		err = os.Remove(Longpath(target))
		if err == nil {
			return nil
		}
	}
	return fmt.Errorf("Remove failure [%s] on %q, reason: %s", context, target, err)
}

func TryRemoveAll(context, target string) (err error) {
	for delay := 0; delay < 5; delay += 1 {
		time.Sleep(time.Duration(delay*100) * time.Millisecond)
		err = os.RemoveAll(Longpath(target))
		if err == nil {
			return nil
		}
	}
	return fmt.Errorf("RemoveAll failure [%s] on %q, reason: %s", context, target, err)
}

func TryRename(context, source, target string) (err error) {
	for delay := 0; delay < 5; delay += 1 {
		time.Sleep(time.Duration(delay*100) * time.Millisecond)
		err = os.Rename(source, target)
		if err == nil {
			return nil
		}
	}
	common.Debug("Heads up: rename about to fail [%q -> %q], reason: %s", source, target, err)
	intermediate := fmt.Sprintf("%s.%d_%x", source, os.Getpid(), rand.Intn(4096))
	err = os.Rename(source, intermediate)
	if err == nil {
		source = intermediate
	}
	for delay := 0; delay < 5; delay += 1 {
		time.Sleep(time.Duration(delay*100) * time.Millisecond)
		err = os.Rename(source, target)
		if err == nil {
			return nil
		}
	}
	return fmt.Errorf("Rename failure [%s] from %q to %q, reason: %s", context, source, target, err)
}
