package settings_test

import (
	"path/filepath"
	"testing"

	"github.com/shovelware/shovel/engine"
	"github.com/shovelware/shovel/hamlet"
	"github.com/shovelware/shovel/pathlib"
	"github.com/shovelware/shovel/settings"
)

const sample = `source: D:\games\steam
target: E:\archive
workers: 6
chunk_size_limit_mb: 128
copy_only: true
pack_command: "7z a -mx0 {archive} @{filelist}"
unpack_command: "7z x -y -o{dir} {archive}"
archive_ext: 7z
`

func TestProfileRoundTripsIntoOptions(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	base := t.TempDir()
	filename := filepath.Join(base, "job.yaml")
	must_be.Nil(pathlib.WriteFile(filename, []byte(sample), 0o644))

	profile, err := settings.LoadProfile(filename)
	must_be.Nil(err)
	wont_be.Nil(profile)

	options := engine.Options{WorkerCount: 2, SubprocessTimeoutS: 10}
	profile.Apply(&options)
	must_be.Equal(`D:\games\steam`, options.SourceRoot)
	must_be.Equal(6, options.WorkerCount)
	must_be.Equal(128, options.ChunkSizeLimitMB)
	must_be.Equal(10, options.SubprocessTimeoutS)
	must_be.True(options.CopyOnly)
	must_be.Equal("7z", options.ArchiveExt)
}

func TestProfileRejectsIncompleteOrUnknown(t *testing.T) {
	_, wont_be := hamlet.Specifications(t)

	base := t.TempDir()
	missing := filepath.Join(base, "missing.yaml")
	_, err := settings.LoadProfile(missing)
	wont_be.Nil(err)

	short := filepath.Join(base, "short.yaml")
	pathlib.WriteFile(short, []byte("source: /only/source\n"), 0o644)
	_, err = settings.LoadProfile(short)
	wont_be.Nil(err)

	odd := filepath.Join(base, "odd.yaml")
	pathlib.WriteFile(odd, []byte("source: /a\ntarget: /b\nbogus_knob: 1\n"), 0o644)
	_, err = settings.LoadProfile(odd)
	wont_be.Nil(err)
}
