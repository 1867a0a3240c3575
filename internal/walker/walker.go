// Package walker recursively discovers audio files under a music
// directory, yielding each file's path and inode.
package walker

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"syscall"
)

// SymlinkPolicy controls how the walker treats symbolic links.
type SymlinkPolicy int

const (
	// SymlinkIgnore skips symlinks entirely. The default.
	SymlinkIgnore SymlinkPolicy = iota
	// SymlinkReport includes symlinks as entries without following them;
	// Entry.Inode then holds the link's own inode, not the target's.
	SymlinkReport
	// SymlinkFollow resolves the link and walks into it if it points at
	// a directory, or reports the target's inode if it points at a file.
	SymlinkFollow
)

// IsMusicFile func type lets callers supply their own extension
// classifier (internal/tags.IsMusicFile in production).
type IsMusicFile func(path string) bool

// Entry is one discovered audio file.
type Entry struct {
	Path  string
	Inode uint64
}

// Options configures a Walk call.
type Options struct {
	Symlinks    SymlinkPolicy
	IsMusicFile IsMusicFile
}

// Walk recursively scans root and returns every audio file found, sorted
// by path for deterministic output. Stat failures and unsupported
// extensions are silently skipped: a single unreadable file must never
// abort an entire library scan.
func Walk(root string, opts Options) ([]Entry, error) {
	if opts.IsMusicFile == nil {
		opts.IsMusicFile = func(string) bool { return true }
	}

	var entries []Entry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr // skip unreadable paths, keep scanning
		}

		if d.Type()&fs.ModeSymlink != 0 {
			switch opts.Symlinks {
			case SymlinkIgnore:
				return nil
			case SymlinkFollow:
				target, err := filepath.EvalSymlinks(path)
				if err != nil {
					return nil //nolint:nilerr
				}
				info, err := os.Stat(target)
				if err != nil {
					return nil //nolint:nilerr
				}
				if info.IsDir() {
					sub, err := Walk(target, opts)
					if err == nil {
						entries = append(entries, sub...)
					}
					return nil
				}
				return addEntry(&entries, target, path, opts)
			case SymlinkReport:
				// fall through to normal stat-based handling below,
				// reporting the link's own inode.
			}
		}

		if d.IsDir() {
			return nil
		}
		return addEntry(&entries, path, path, opts)
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// addEntry stats statPath (the file to derive the inode from) and, if
// it's a supported music file, appends an Entry under reportPath.
func addEntry(entries *[]Entry, statPath, reportPath string, opts Options) error {
	if !opts.IsMusicFile(reportPath) {
		return nil
	}
	info, err := os.Lstat(statPath)
	if err != nil {
		return nil //nolint:nilerr // skip files we can't stat
	}
	ino, ok := inodeOf(info)
	if !ok {
		return nil
	}
	*entries = append(*entries, Entry{Path: reportPath, Inode: ino})
	return nil
}

// inodeOf extracts the inode number from a file's stat info.
func inodeOf(info os.FileInfo) (uint64, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, false
	}
	return stat.Ino, true
}
