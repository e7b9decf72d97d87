package engine

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/profsync/profsync/internal/utils"
)

// Backup directory layout names. A backup contains either a single profile/
// folder (unified source) or roaming/ plus an optional local/ pair (split
// source). Consumers check them in that order.
const (
	LayoutProfile = "profile"
	LayoutRoaming = "roaming"
	LayoutLocal   = "local"
)

type ResolutionKind int

const (
	// ResolutionFound means the literal <destRoot>/<backupId> path exists.
	ResolutionFound ResolutionKind = iota

	// ResolutionFallback means a sibling directory was matched by the
	// date-time-prefix search. Naming drift between tool versions makes this
	// necessary; it is not guaranteed to pick the right backup if several
	// directories share the prefix.
	ResolutionFallback

	// ResolutionNotFound means literal and fallback search both failed.
	ResolutionNotFound
)

// Resolution is the tagged result of mapping a backup id to a directory.
type Resolution struct {
	Kind ResolutionKind
	Path string
}

// BackupResolver locates backup directories under a destination root.
type BackupResolver struct {
	fs afero.Fs
}

func NewBackupResolver(fs afero.Fs) *BackupResolver {
	return &BackupResolver{fs: fs}
}

// Resolve maps backupID to a directory under destRoot. The literal path is
// tried first; failing that, destRoot is scanned for the first directory (in
// listing order) whose name contains the id's date-time prefix. When both
// fail the resolution is NotFound and ErrBackupNotFound is returned.
func (r *BackupResolver) Resolve(destRoot, backupID string) (Resolution, error) {
	literal := filepath.Join(destRoot, backupID)
	if utils.DirExists(r.fs, literal) {
		return Resolution{Kind: ResolutionFound, Path: literal}, nil
	}

	prefix := dateTimePrefix(backupID)
	entries, err := afero.ReadDir(r.fs, destRoot)
	if err == nil {
		for _, entry := range entries {
			if entry.IsDir() && strings.Contains(entry.Name(), prefix) {
				return Resolution{
					Kind: ResolutionFallback,
					Path: filepath.Join(destRoot, entry.Name()),
				}, nil
			}
		}
	}

	return Resolution{Kind: ResolutionNotFound}, fmt.Errorf("%w: %s", ErrBackupNotFound, backupID)
}

// Layouts returns the layout subdirectories present in a resolved backup
// directory, checked in the order profile -> roaming -> local.
func (r *BackupResolver) Layouts(backupDir string) []string {
	if utils.DirExists(r.fs, filepath.Join(backupDir, LayoutProfile)) {
		return []string{LayoutProfile}
	}

	var layouts []string
	if utils.DirExists(r.fs, filepath.Join(backupDir, LayoutRoaming)) {
		layouts = append(layouts, LayoutRoaming)
	}
	if utils.DirExists(r.fs, filepath.Join(backupDir, LayoutLocal)) {
		layouts = append(layouts, LayoutLocal)
	}
	return layouts
}

// dateTimePrefix extracts the first two dash-delimited segments of a backup
// id, i.e. its YYYYMMDD-HHMMSS part.
func dateTimePrefix(backupID string) string {
	parts := strings.SplitN(backupID, "-", 3)
	if len(parts) < 2 {
		return backupID
	}
	return parts[0] + "-" + parts[1]
}
