package plan

import (
	"io/fs"
	"math/rand"
	"path/filepath"
	"strings"

	"github.com/shovelware/shovel/common"
)

const (
	thresholdFloor   = 16 * 1024 * 1024
	thresholdCeiling = 256 * 1024 * 1024
)

// Scan enumerates regular files under root, skipping the whole subtree
// at skip (the cache directory). Broken links and files vanishing
// mid-scan are dropped silently.
func Scan(root, skip string) ([]FileEntry, int64, error) {
	var entries []FileEntry
	var total int64
	walker := func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			common.Trace("Scan skipping %q, reason: %v", path, err)
			return nil
		}
		if entry.IsDir() {
			if skip != "" && sameOrUnder(skip, path) {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			common.Trace("Scan lost %q mid-flight, reason: %v", path, err)
			return nil
		}
		entries = append(entries, FileEntry{Path: path, Size: info.Size()})
		total += info.Size()
		return nil
	}
	err := filepath.WalkDir(root, walker)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func sameOrUnder(base, candidate string) bool {
	relative, err := filepath.Rel(base, candidate)
	if err != nil {
		return false
	}
	return relative == "." || !strings.HasPrefix(relative, "..")
}

// Threshold picks the large-file cutoff from the average file size.
// Ten times the average catches the outliers in a sea of small files,
// the clamp keeps uniform trees sane at either extreme.
func Threshold(totalBytes int64, count int) int64 {
	if count < 1 {
		return thresholdCeiling
	}
	average := totalBytes / int64(count)
	threshold := average * 10
	if threshold > thresholdCeiling {
		threshold = thresholdCeiling
	}
	if threshold < thresholdFloor {
		threshold = thresholdFloor
	}
	return threshold
}

// Shuffle permutes the small-file list in place. Load-bearing: mixing
// files from different directories into each pack spreads concurrent
// reads across the source tree instead of hammering one directory.
func Shuffle(files []FileEntry) {
	rand.Shuffle(len(files), func(left, right int) {
		files[left], files[right] = files[right], files[left]
	})
}

// Chunk partitions the (already shuffled) small files into balanced
// packs. The file-count target len/workers is the primary rule; the
// byte limit is a safety valve against a run of big-ish entries.
// A degenerate worker count falls back to the flat file cap.
func Chunk(files []FileEntry, workers, fileCap int, byteLimit int64) [][]FileEntry {
	if len(files) == 0 {
		return nil
	}
	ideal := fileCap
	if workers > 0 {
		ideal = (len(files) + workers - 1) / workers
	}
	if ideal < 1 {
		ideal = 1
	}
	var chunks [][]FileEntry
	var current []FileEntry
	var currentBytes int64
	for _, file := range files {
		full := currentBytes+file.Size > byteLimit
		if len(current) > 0 && (len(current) >= ideal || full) {
			chunks = append(chunks, current)
			current = nil
			currentBytes = 0
		}
		current = append(current, file)
		currentBytes += file.Size
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}

type Options struct {
	Workers   int
	FileCap   int
	ByteLimit int64
}

// Build classifies the scanned files and produces the full ordered
// task list with fresh identities. Packs come first, large moves
// after; execution order is advisory anyway.
func Build(sourceRoot, targetRoot string, files []FileEntry, totalBytes int64, options Options) *Plan {
	threshold := Threshold(totalBytes, len(files))
	common.Debug("Large file threshold is %d bytes over %d files.", threshold, len(files))

	var small, large []FileEntry
	for _, file := range files {
		if file.Size >= threshold {
			large = append(large, file)
		} else {
			small = append(small, file)
		}
	}

	Shuffle(small)
	chunks := Chunk(small, options.Workers, options.FileCap, options.ByteLimit)

	nonce := newNonce()
	tasks := make([]*Task, 0, len(chunks)+len(large))
	for index, chunk := range chunks {
		packId := index + 1
		tasks = append(tasks, &Task{
			Type:   KindPack,
			TaskID: identity(nonce, KindPack, packId, chunk[0].Path),
			PackID: packId,
			Files:  chunk,
		})
	}
	for index, file := range large {
		entry := file
		tasks = append(tasks, &Task{
			Type:     KindMoveLarge,
			TaskID:   identity(nonce, KindMoveLarge, index+1, file.Path),
			FileInfo: &entry,
		})
	}
	common.Log("Planned %d pack tasks and %d large moves, %d bytes total.", len(chunks), len(large), totalBytes)
	return &Plan{
		SourceRoot: sourceRoot,
		TargetRoot: targetRoot,
		TotalBytes: totalBytes,
		Tasks:      tasks,
	}
}
