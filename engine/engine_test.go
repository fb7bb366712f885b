package engine_test

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shovelware/shovel/engine"
	"github.com/shovelware/shovel/hamlet"
	"github.com/shovelware/shovel/pathlib"
	"github.com/shovelware/shovel/session"
	"github.com/shovelware/shovel/shell"
)

func needsTar(t *testing.T) {
	t.Helper()
	_, err := exec.LookPath("tar")
	if err != nil {
		t.Skip("no tar on PATH")
	}
}

func tarOptions(source, target string) engine.Options {
	return engine.Options{
		SourceRoot:         source,
		TargetRoot:         target,
		WorkerCount:        2,
		ChunkSizeLimitMB:   64,
		ChunkFileLimit:     5000,
		SubprocessTimeoutS: 60,
		PackCommand:        `tar -cf {archive} -T {filelist}`,
		UnpackCommand:      `tar -xf {archive} -C {dir}`,
		ArchiveExt:         "tar",
	}
}

type recorder struct {
	mutex    sync.Mutex
	percents []int
}

func (it *recorder) status(message string, percent int) {
	it.mutex.Lock()
	defer it.mutex.Unlock()
	if percent >= 0 {
		it.percents = append(it.percents, percent)
	}
}

func seedTree(t *testing.T, root string, spread, each int) int {
	t.Helper()
	count := 0
	for dir := 0; dir < spread; dir += 1 {
		for file := 0; file < each; file += 1 {
			name := filepath.Join(root, fmt.Sprintf("dir%02d", dir), fmt.Sprintf("file%02d.txt", file))
			err := pathlib.WriteFile(name, []byte(fmt.Sprintf("payload %d/%d", dir, file)), 0o644)
			if err != nil {
				t.Fatal(err)
			}
			count += 1
		}
	}
	return count
}

func TestMigrationMirrorsTreeAndRemovesSource(t *testing.T) {
	needsTar(t)
	must_be, wont_be := hamlet.Specifications(t)

	source := filepath.Join(t.TempDir(), "projects")
	target := t.TempDir()
	_, err := pathlib.EnsureDirectory(source)
	must_be.Nil(err)
	seedTree(t, source, 5, 4)

	watcher := &recorder{}
	options := tarOptions(source, target)
	options.Status = watcher.status

	sut, err := engine.New(options)
	must_be.Nil(err)
	must_be.Nil(sut.Run())

	base := filepath.Join(target, "projects")
	for dir := 0; dir < 5; dir += 1 {
		for file := 0; file < 4; file += 1 {
			migrated := filepath.Join(base, fmt.Sprintf("dir%02d", dir), fmt.Sprintf("file%02d.txt", file))
			blob, err := os.ReadFile(migrated)
			must_be.Nil(err)
			must_be.Equal(fmt.Sprintf("payload %d/%d", dir, file), string(blob))
		}
	}
	wont_be.True(pathlib.Exists(source))

	// progress throttle keeps the percent stream monotone and bounded
	watcher.mutex.Lock()
	defer watcher.mutex.Unlock()
	previous := -1
	for _, percent := range watcher.percents {
		must_be.True(percent >= previous)
		must_be.True(percent <= 100)
		previous = percent
	}
}

func TestCopyOnlyLeavesSourceIntact(t *testing.T) {
	needsTar(t)
	must_be, wont_be := hamlet.Specifications(t)

	source := filepath.Join(t.TempDir(), "stuff")
	target := t.TempDir()
	_, err := pathlib.EnsureDirectory(source)
	must_be.Nil(err)
	count := seedTree(t, source, 4, 3)
	must_be.Equal(12, count)

	options := tarOptions(source, target)
	options.CopyOnly = true

	sut, err := engine.New(options)
	must_be.Nil(err)
	must_be.Nil(sut.Run())

	for dir := 0; dir < 4; dir += 1 {
		for file := 0; file < 3; file += 1 {
			original := filepath.Join(source, fmt.Sprintf("dir%02d", dir), fmt.Sprintf("file%02d.txt", file))
			migrated := filepath.Join(target, "stuff", fmt.Sprintf("dir%02d", dir), fmt.Sprintf("file%02d.txt", file))
			left, err := os.ReadFile(original)
			must_be.Nil(err)
			right, err := os.ReadFile(migrated)
			must_be.Nil(err)
			must_be.Equal(string(left), string(right))
		}
	}
	// cache is gone, source tree stays
	wont_be.True(pathlib.Exists(session.CacheDir(source)))
	must_be.True(pathlib.IsDir(source))
}

func TestLargeFilesTravelIndividually(t *testing.T) {
	needsTar(t)
	must_be, wont_be := hamlet.Specifications(t)

	source := filepath.Join(t.TempDir(), "mixed")
	target := t.TempDir()
	_, err := pathlib.EnsureDirectory(source)
	must_be.Nil(err)
	// enough small files to pin the dynamic threshold at its floor,
	// so the 17 MiB file classifies as an individual move
	seedTree(t, source, 10, 20)
	huge := make([]byte, 17*1024*1024)
	copy(huge, []byte("head marker"))
	must_be.Nil(pathlib.WriteFile(filepath.Join(source, "big", "huge.bin"), huge, 0o644))

	sut, err := engine.New(tarOptions(source, target))
	must_be.Nil(err)
	must_be.Nil(sut.Run())

	migrated := filepath.Join(target, "mixed", "big", "huge.bin")
	stat, err := os.Stat(migrated)
	must_be.Nil(err)
	must_be.Equal(int64(17*1024*1024), stat.Size())
	must_be.True(pathlib.IsFile(filepath.Join(target, "mixed", "dir09", "file19.txt")))
	wont_be.True(pathlib.Exists(source))
}

func TestDryRunMutatesNothing(t *testing.T) {
	needsTar(t)
	must_be, wont_be := hamlet.Specifications(t)

	source := filepath.Join(t.TempDir(), "untouched")
	target := filepath.Join(t.TempDir(), "virgin")
	_, err := pathlib.EnsureDirectory(source)
	must_be.Nil(err)
	seedTree(t, source, 2, 2)

	options := tarOptions(source, target)
	options.DryRun = true

	sut, err := engine.New(options)
	must_be.Nil(err)
	must_be.Nil(sut.Run())

	wont_be.True(pathlib.Exists(target))
	wont_be.True(pathlib.Exists(session.CacheDir(source)))
	must_be.True(pathlib.IsFile(filepath.Join(source, "dir00", "file00.txt")))
}

func TestConfigValidationRejectsNonsense(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	_, err := engine.New(engine.Options{SourceRoot: "/definitely/not/there", TargetRoot: "/tmp"})
	must_be.True(err != nil)

	source := t.TempDir()
	options := engine.Options{SourceRoot: source, TargetRoot: "", WorkerCount: 4}
	_, err = engine.New(options)
	must_be.True(err != nil)
}

func TestResumeSkipsCompletedAndReusesArchives(t *testing.T) {
	needsTar(t)
	must_be, wont_be := hamlet.Specifications(t)

	source := filepath.Join(t.TempDir(), "resumed")
	target := t.TempDir()
	_, err := pathlib.EnsureDirectory(source)
	must_be.Nil(err)
	cache := session.CacheDir(source)

	// pending pack: files still on disk
	must_be.Nil(pathlib.WriteFile(filepath.Join(source, "fresh", "left.txt"), []byte("fresh-left"), 0o644))
	must_be.Nil(pathlib.WriteFile(filepath.Join(source, "fresh", "right.txt"), []byte("fresh-right"), 0o644))

	// replayable pack: sources already deleted by the previous run,
	// the bytes only survive inside the cached archive
	ghost := filepath.Join(source, "ghost", "inside.txt")
	must_be.Nil(pathlib.WriteFile(ghost, []byte("from archive"), 0o644))
	filelist := session.FilelistPath(cache, 2)
	must_be.Nil(pathlib.WriteFile(filelist, []byte("ghost/inside.txt\n"), 0o644))
	packer := shell.New(nil, source, "tar", "-cf", session.ArchivePath(cache, 2, ".tar"), "-T", filelist)
	_, code, err := packer.CaptureOutput()
	must_be.Nil(err)
	must_be.Equal(0, code)
	must_be.True(pathlib.RemoveFile(ghost))
	must_be.Nil(os.Remove(filepath.Join(source, "ghost")))

	sessionBlob := fmt.Sprintf(`{
  "source_dir": %q,
  "target_dir": %q,
  "total_transfer_size": 100,
  "task_plan": [
    {
      "type": "pack",
      "task_id": "pack_1_done",
      "pack_id": 1,
      "files": [{"path": %q, "size": 30}]
    },
    {
      "type": "pack",
      "task_id": "pack_2_replay",
      "pack_id": 2,
      "files": [{"path": %q, "size": 30}]
    },
    {
      "type": "pack",
      "task_id": "pack_3_fresh",
      "pack_id": 3,
      "files": [{"path": %q, "size": 20}, {"path": %q, "size": 20}]
    }
  ],
  "completed_task_ids": ["pack_1_done"]
}`,
		source, target,
		filepath.Join(source, "already", "gone.txt"),
		ghost,
		filepath.Join(source, "fresh", "left.txt"),
		filepath.Join(source, "fresh", "right.txt"))
	must_be.Nil(pathlib.WriteFile(session.SessionFile(cache), []byte(sessionBlob), 0o644))

	options := tarOptions(source, target)
	options.ResumeSession = true

	sut, err := engine.New(options)
	must_be.Nil(err)
	must_be.Nil(sut.Run())

	base := filepath.Join(target, "resumed")
	blob, err := os.ReadFile(filepath.Join(base, "ghost", "inside.txt"))
	must_be.Nil(err)
	must_be.Equal("from archive", string(blob))
	blob, err = os.ReadFile(filepath.Join(base, "fresh", "left.txt"))
	must_be.Nil(err)
	must_be.Equal("fresh-left", string(blob))

	// completed pack was not replayed: its file never existed, yet the
	// run finished and tore the source down
	wont_be.True(pathlib.Exists(filepath.Join(base, "already")))
	wont_be.True(pathlib.Exists(source))
}

func TestResumeRejectsForeignSessionAndRunsFresh(t *testing.T) {
	needsTar(t)
	must_be, wont_be := hamlet.Specifications(t)

	source := filepath.Join(t.TempDir(), "fresh")
	target := t.TempDir()
	_, err := pathlib.EnsureDirectory(source)
	must_be.Nil(err)
	seedTree(t, source, 2, 2)

	cache := session.CacheDir(source)
	foreign := fmt.Sprintf(`{"source_dir": %q, "target_dir": %q, "total_transfer_size": 1, "task_plan": [], "completed_task_ids": []}`,
		"/somewhere/else", target)
	must_be.Nil(pathlib.WriteFile(session.SessionFile(cache), []byte(foreign), 0o644))

	options := tarOptions(source, target)
	options.ResumeSession = true

	sut, err := engine.New(options)
	must_be.Nil(err)
	must_be.Nil(sut.Run())

	must_be.True(pathlib.IsFile(filepath.Join(target, "fresh", "dir00", "file00.txt")))
	wont_be.True(pathlib.Exists(source))
}
